// Package service provides the business logic layer for the Sokoban server.
//
// The service package implements:
//   - Multi-session game management
//   - Level pack listing, loading and upload
//   - Move processing with per-step outcomes and events
//   - Solver-backed hints
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PackManager loads and stores level packs.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine over one level pack, so
// sessions never share board state. Every mutation is persisted through
// SessionManager.Save; a failed save is logged and the move still counts.
//
// Usage:
//
//	packs, _ := config.NewManager("levels")
//	sessionMgr := session.NewManager()
//	gameService := service.NewGameService(sessionMgr, packs)
//
//	info, err := gameService.CreateSession(ctx, "microban")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right", false)
//
// Operations are traced with OpenTelemetry spans named service.<Operation>.
// Without an exporter configured the global no-op tracer is used.
package service
