package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/outbound-ai/softphone-media/internal/audio"
	"github.com/outbound-ai/softphone-media/internal/metrics"
	"github.com/outbound-ai/softphone-media/internal/pipeline"
)

// ManagerConfig contains configuration for the session manager
type ManagerConfig struct {
	QueueCapacity    int
	SampleRate       int
	IdleTimeout      time.Duration
	RecordingEnabled bool
	RecordingDir     string

	// OnSessionCreated, when set, is invoked for each newly created
	// session, after it is registered. Callers use it to attach audio
	// devices to the session's pipelines. The callback runs with the
	// manager lock held and must not call back into the Manager.
	OnSessionCreated func(*Session)
}

// Manager tracks all active call sessions by stream ID and reaps the
// ones that go idle.
type Manager struct {
	sessions map[uint32]*Session
	mu       sync.RWMutex
	logger   *slog.Logger
	config   ManagerConfig
	metrics  *metrics.Metrics

	ctx     context.Context
	cancel  context.CancelFunc
	cleanup chan struct{}
}

// NewManager creates a session manager and starts its idle-session
// cleanup routine.
func NewManager(logger *slog.Logger, config ManagerConfig, m *metrics.Metrics) (*Manager, error) {
	if config.QueueCapacity <= 0 {
		return nil, fmt.Errorf("queue capacity must be positive, got %d", config.QueueCapacity)
	}
	if config.IdleTimeout <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive, got %v", config.IdleTimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())

	mgr := &Manager{
		sessions: make(map[uint32]*Session),
		logger:   logger,
		config:   config,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
		cleanup:  make(chan struct{}),
	}

	go mgr.startCleanupRoutine()

	return mgr, nil
}

// CreateSession creates a session for the given stream. The sink receives
// the serialized capture blocks the session's outbound pipeline emits.
// Creating a session for an existing stream updates its metadata and
// returns the existing session.
func (m *Manager) CreateSession(streamID uint32, md Metadata, sink pipeline.FrameSink) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, exists := m.sessions[streamID]; exists {
		m.logger.Warn("Session already exists, updating metadata",
			slog.Uint64("stream_id", uint64(streamID)),
			slog.String("existing_caller", existing.CallerID),
			slog.String("new_caller", md.CallerID),
		)

		existing.mu.Lock()
		existing.Extension = md.Extension
		existing.CallerID = md.CallerID
		existing.CalledID = md.CalledID
		existing.LastActivity = time.Now()
		existing.mu.Unlock()

		return existing, nil
	}

	inbound, err := pipeline.NewInbound(m.config.QueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create playback pipeline: %w", err)
	}

	var recorder *audio.Recorder
	if m.config.RecordingEnabled {
		recorder, err = audio.NewRecorder(md.CallID, m.config.RecordingDir, m.config.SampleRate, m.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create call recorder: %w", err)
		}
	}

	now := time.Now()
	session := &Session{
		StreamID:     streamID,
		CallID:       md.CallID,
		Extension:    md.Extension,
		CallerID:     md.CallerID,
		CalledID:     md.CalledID,
		StartTime:    now,
		LastActivity: now,
		Inbound:      inbound,
		Outbound:     pipeline.NewOutbound(sink),
		recorder:     recorder,
	}

	m.sessions[streamID] = session

	if m.metrics != nil {
		m.metrics.RecordSessionCreated()
		m.metrics.SetActiveSessions(len(m.sessions))
	}

	m.logger.Info("Created new call session",
		slog.Uint64("stream_id", uint64(streamID)),
		slog.String("call_id", session.CallID),
		slog.String("extension", session.Extension),
		slog.String("caller_id", session.CallerID),
		slog.String("called_id", session.CalledID),
	)

	if m.config.OnSessionCreated != nil {
		m.config.OnSessionCreated(session)
	}

	return session, nil
}

// GetSession retrieves an existing session
func (m *Manager) GetSession(streamID uint32) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[streamID]
	return session, exists
}

// ActiveSessionCount returns the number of currently active sessions
func (m *Manager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// AllSessions returns a snapshot of all active sessions (for monitoring)
func (m *Manager) AllSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// RemoveSession tears down a session, finalizes its recording, and
// removes it from the registry.
func (m *Manager) RemoveSession(streamID uint32) bool {
	m.mu.Lock()
	session, exists := m.sessions[streamID]
	if exists {
		delete(m.sessions, streamID)
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	if !exists {
		return false
	}

	m.teardown(session)

	if m.metrics != nil {
		m.metrics.RecordSessionDestroyed(time.Since(session.StartTime).Seconds())
		m.metrics.SetActiveSessions(remaining)
	}

	return true
}

// Stop gracefully stops the manager, tearing down all sessions.
func (m *Manager) Stop() {
	m.logger.Info("Stopping session manager...")

	m.cancel()
	<-m.cleanup

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, session := range m.sessions {
		sessions = append(sessions, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, session := range sessions {
		m.teardown(session)
	}

	if m.metrics != nil {
		m.metrics.SetActiveSessions(0)
	}

	m.logger.Info("Session manager stopped",
		slog.Int("sessions_closed", len(sessions)),
	)
}

func (m *Manager) teardown(session *Session) {
	in := session.Inbound.Stats()
	out := session.Outbound.Stats()

	session.Close()

	// Fold the session's lifetime loss counters into the service totals.
	if m.metrics != nil {
		m.metrics.RecordQueueDrops(int(in.SamplesDropped))
		m.metrics.RecordUnderrunSamples(int(in.UnderrunSamples))
	}

	path, err := session.FinalizeRecording()
	if err != nil {
		m.logger.Error("Failed to finalize call recording",
			slog.Uint64("stream_id", uint64(session.StreamID)),
			slog.String("call_id", session.CallID),
			slog.String("error", err.Error()),
		)
	}

	attrs := []any{
		slog.Uint64("stream_id", uint64(session.StreamID)),
		slog.String("call_id", session.CallID),
		slog.Duration("duration", time.Since(session.StartTime)),
		slog.Uint64("samples_decoded", in.SamplesDecoded),
		slog.Uint64("samples_dropped", in.SamplesDropped),
		slog.Uint64("blocks_emitted", out.BlocksEmitted),
	}
	if path != "" {
		attrs = append(attrs, slog.String("recording", path))
	}
	m.logger.Info("Call session removed", attrs...)
}

// startCleanupRoutine runs in a separate goroutine to reap idle sessions
func (m *Manager) startCleanupRoutine() {
	defer close(m.cleanup)

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	m.logger.Info("Session cleanup routine started",
		slog.Duration("idle_timeout", m.config.IdleTimeout),
	)

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("Session cleanup routine stopping")
			return

		case <-ticker.C:
			m.cleanupIdleSessions()
		}
	}
}

// cleanupIdleSessions removes sessions that have been inactive for too long
func (m *Manager) cleanupIdleSessions() {
	now := time.Now()
	idle := make([]uint32, 0)

	m.mu.RLock()
	for streamID, session := range m.sessions {
		session.mu.RLock()
		lastActivity := session.LastActivity
		session.mu.RUnlock()

		if now.Sub(lastActivity) > m.config.IdleTimeout {
			idle = append(idle, streamID)
		}
	}
	m.mu.RUnlock()

	if len(idle) > 0 {
		m.logger.Info("Cleaning up idle sessions",
			slog.Int("idle_count", len(idle)),
		)

		for _, streamID := range idle {
			m.RemoveSession(streamID)
		}
	}
}
