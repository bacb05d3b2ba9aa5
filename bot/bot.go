// Package bot owns the connection lifecycle of one IRC client instance: the
// state machine across connect, reconnect and shutdown, the line-processing
// loop that feeds the parser, the handshake sequence, and the raw line
// sender. Everything protocol-shaped lives in the collaborating packages;
// this one keeps the connection alive and tears it down exactly once.
package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/ircbot/dcc"
	"github.com/c360/ircbot/errors"
	"github.com/c360/ircbot/event"
	"github.com/c360/ircbot/health"
	"github.com/c360/ircbot/irc"
	"github.com/c360/ircbot/output"
	"github.com/c360/ircbot/state"
)

// Connection status values reported to the metrics gauge.
const (
	statusIdle = iota
	statusConnecting
	statusConnected
	statusShuttingDown
)

// botCount assigns each constructed bot a process-wide id, diagnostics only.
// It is never reset.
var botCount atomic.Int64

// Bot is one IRC client instance. Construct with New, start with Connect.
// A Bot may reconnect many times but shuts down exactly once per session;
// after a completed shutdown with reconnect disabled it stays terminal until
// Connect is called again.
type Bot struct {
	id     int64
	config Config
	logger *slog.Logger

	registry *state.Registry
	manager  event.Manager

	cell          shutdownCell
	everConnected atomic.Bool

	// connectMu serializes the liveness check with session establishment
	// so concurrent Connect calls cannot both dial
	connectMu sync.Mutex

	sessMu  sync.Mutex
	session *session

	rejoinMu      sync.Mutex
	pendingRejoin []state.ChannelSnapshot

	// Outbound façades, all funneling into SendRawLine
	Send *output.IRC
	Cap  *output.CAP
	DCC  *output.DCC
}

// Option configures a Bot at construction
type Option func(*Bot)

// WithLogger sets the bot logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// New builds a bot from a validated configuration
func New(config Config, opts ...Option) (*Bot, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Bot{
		id:       botCount.Add(1),
		config:   config,
		registry: state.NewRegistry(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default().With("component", "bot", "bot", config.Name)
	}
	b.manager = config.Manager
	if b.manager == nil {
		b.manager = event.NewSequentialManager(event.WithLogger(b.logger))
	}

	raw := output.NewRaw(b, config.MessageDelay, b.logger)
	b.Send = output.NewIRC(raw)
	b.Cap = output.NewCAP(raw)
	b.DCC = output.NewDCC(b.Send)
	return b, nil
}

// BotID returns the process-wide instance id
func (b *Bot) BotID() int64 { return b.id }

// Nick returns the bot's current nickname
func (b *Bot) Nick() string {
	if sess := b.currentSession(); sess != nil {
		return sess.currentNick()
	}
	return b.config.Name
}

// Registry exposes the channel and user registry
func (b *Bot) Registry() *state.Registry { return b.registry }

// Manager exposes the listener manager for registration
func (b *Bot) Manager() event.Manager { return b.manager }

// IsConnected reports whether a session is currently live
func (b *Bot) IsConnected() bool { return b.currentSession() != nil }

// AcceptedCapabilities returns the capability names the server has
// acknowledged this session, in acceptance order
func (b *Bot) AcceptedCapabilities() []string {
	if sess := b.currentSession(); sess != nil {
		return sess.acceptedCaps()
	}
	return nil
}

// IsLoggedIn reports whether server registration has completed this session
func (b *Bot) IsLoggedIn() bool {
	if sess := b.currentSession(); sess != nil {
		return sess.isLoggedIn()
	}
	return false
}

// DCCManager returns the live session's direct connection manager, nil when
// disconnected
func (b *Bot) DCCManager() *dcc.Manager {
	if sess := b.currentSession(); sess != nil {
		return sess.dcc
	}
	return nil
}

// Health reports connection health for the diagnostics endpoint
func (b *Bot) Health() health.Status {
	if !b.IsConnected() {
		return health.NewUnhealthy("connection", "disconnected")
	}
	if !b.IsLoggedIn() {
		return health.NewDegraded("connection", "connected, registration pending")
	}
	return health.NewHealthy("connection", "logged in to "+b.config.Server)
}

func (b *Bot) currentSession() *session {
	b.sessMu.Lock()
	defer b.sessMu.Unlock()
	return b.session
}

func (b *Bot) setSession(s *session) {
	b.sessMu.Lock()
	b.session = s
	b.sessMu.Unlock()
}

// Connect opens the connection, runs the handshake and then blocks running
// the line-processing loop until the connection ends. The returned error
// covers establishment only; mid-session failures route through Shutdown and
// surface as events.
func (b *Bot) Connect(ctx context.Context) error {
	return b.connect(ctx, false)
}

// Reconnect re-runs Connect for a bot that has connected before. The outcome
// is also dispatched as a ReconnectEvent.
func (b *Bot) Reconnect(ctx context.Context) error {
	if !b.everConnected.Load() {
		return errors.WrapMisuse(errors.ErrReconnectBeforeConnect, "bot", "reconnect", "no prior connection")
	}
	return b.connect(ctx, true)
}

func (b *Bot) connect(ctx context.Context, isReconnect bool) error {
	b.connectMu.Lock()
	if b.IsConnected() {
		b.connectMu.Unlock()
		return errors.WrapMisuse(errors.ErrAlreadyConnected, "bot", "connect", "a session is already live")
	}
	if b.cell.inProgress() {
		b.connectMu.Unlock()
		return errors.WrapMisuse(errors.ErrShutdownInProgress, "bot", "connect", "shutdown is in flight")
	}
	sess, err := b.establish(ctx)
	b.connectMu.Unlock()
	if err != nil {
		if isReconnect {
			b.recordReconnect(false)
			b.dispatch(&event.ReconnectEvent{Base: event.NewBase(b), Success: false, Cause: err})
		}
		return err
	}
	if isReconnect {
		b.recordReconnect(true)
		b.dispatch(&event.ReconnectEvent{Base: event.NewBase(b), Success: true})
	}
	b.replayJoins()

	b.runLoop(ctx, sess)
	return nil
}

// establish performs the non-blocking half of connect: dial, session setup,
// ident registration, capability trigger and handshake
func (b *Bot) establish(ctx context.Context) (*session, error) {
	b.setStatus(statusConnecting)

	addrs, err := b.resolveAddresses(ctx)
	if err != nil {
		b.setStatus(statusIdle)
		return nil, err
	}

	var conn net.Conn
	var dialErr error
	for _, addr := range addrs {
		conn, dialErr = b.config.Dialer.Dial(ctx, addr)
		if dialErr == nil {
			b.logger.Info("Connected", "addr", addr)
			break
		}
		b.logger.Warn("Dial failed, trying next address", "addr", addr, "error", dialErr)
	}
	if conn == nil {
		b.setStatus(statusIdle)
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %w", errors.ErrUnreachableEndpoint, dialErr),
			"bot", "connect", "dial "+b.config.Server)
	}

	b.cell.reset()
	sess := newSession(conn, b.config.Name)
	sess.dcc = dcc.NewManager(b.logger)
	sess.parser = b.newParser(sess)
	b.setSession(sess)
	b.everConnected.Store(true)
	b.setStatus(statusConnected)

	b.dispatch(&event.SocketConnectEvent{Base: event.NewBase(b)})

	if b.config.Ident != nil {
		if tcp, ok := conn.LocalAddr().(*net.TCPAddr); ok {
			b.config.Ident.AddEntry(tcp.Port, b.config.Login)
		}
	}

	if err := b.handshake(sess); err != nil {
		sess.close()
		b.teardownSession(sess)
		b.setStatus(statusIdle)
		return nil, err
	}
	return sess, nil
}

// handshake emits the registration sequence in strict order. Capability
// negotiation fires first because it must precede identity announcement;
// no responses are awaited here.
func (b *Bot) handshake(sess *session) error {
	if b.config.CapEnabled {
		if err := b.Cap.LS(); err != nil {
			return err
		}
	}
	if w := b.config.WebIRC; w.Enabled {
		line := fmt.Sprintf("WEBIRC %s %s %s %s", w.Password, w.Username, w.Hostname, w.Address)
		if err := b.SendRawLine(line); err != nil {
			return err
		}
	}
	if b.config.Password != "" {
		if err := b.SendRawLine("PASS " + b.config.Password); err != nil {
			return err
		}
	}
	if err := b.SendRawLine("NICK " + sess.currentNick()); err != nil {
		return err
	}
	return b.SendRawLine(fmt.Sprintf("USER %s 8 * :%s", b.config.Login, b.config.RealName))
}

// newParser wires a parser to this session's registry and dispatcher
func (b *Bot) newParser(sess *session) *irc.Parser {
	return irc.NewParser(irc.ParserDeps{
		Bot:      b,
		Registry: b.registry,
		Dispatch: b.dispatch,
		Sender:   b,
		Logger:   b.logger,
		Hooks: irc.Hooks{
			LoggedIn: func(nick string) {
				sess.setNick(nick)
				sess.setLoggedIn()
			},
			NickChanged: sess.setNick,
			CapAck:      sess.addCaps,
		},
	})
}

// resolveAddresses expands the configured server into dial candidates.
// Websocket URLs pass through unchanged; host:port endpoints resolve to one
// candidate per address record, tried in resolver order.
func (b *Bot) resolveAddresses(ctx context.Context) ([]string, error) {
	server := b.config.Server
	if strings.HasPrefix(server, "ws://") || strings.HasPrefix(server, "wss://") {
		return []string{server}, nil
	}
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		return nil, errors.WrapInvalid(err, "bot", "connect", "parse server address "+server)
	}
	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("%w: %w", errors.ErrUnreachableEndpoint, err),
			"bot", "connect", "resolve "+host)
	}
	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, net.JoinHostPort(ip, port))
	}
	return addrs, nil
}

// runLoop is the line-processing loop. It owns the connection until exit and
// always funnels into Shutdown exactly once as its final action.
func (b *Bot) runLoop(ctx context.Context, sess *session) {
	defer func() {
		if err := b.Shutdown(false); err != nil && !errors.IsMisuse(err) {
			b.logger.Error("Shutdown after loop exit failed", "error", err)
		}
	}()

	for {
		if ctx.Err() != nil {
			b.logger.Info("Context cancelled, leaving read loop")
			return
		}
		if err := sess.conn.SetReadDeadline(time.Now().Add(b.config.SocketTimeout)); err != nil {
			return
		}
		line, err := sess.reader.ReadString('\n')
		if err != nil {
			var ne net.Error
			if stderrors.As(err, &ne) && ne.Timeout() {
				if probeErr := b.sendProbe(); probeErr != nil {
					b.logger.Error("Liveness probe failed", "error", probeErr)
					return
				}
				continue
			}
			if b.cell.inProgress() {
				// expected race between close and read
				return
			}
			b.logger.Warn("Connection lost", "error",
				errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrConnectionLost, err), "bot", "read-loop", "read line"))
			return
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		b.recordLineReceived()
		b.handleLineSafe(sess, line)
	}
}

// sendProbe writes one liveness PING after an idle read timeout
func (b *Bot) sendProbe() error {
	if err := b.SendRawLine(fmt.Sprintf("PING %d", time.Now().Unix())); err != nil {
		return err
	}
	b.recordProbe()
	return nil
}

// handleLineSafe feeds one line to the parser with fault isolation: a parser
// error or panic is logged and never terminates the loop
func (b *Bot) handleLineSafe(sess *session, line string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Line handler panicked", "line", line, "panic", r)
		}
	}()
	if err := sess.parser.HandleLine(line); err != nil {
		b.logger.Error("Line handling failed", "line", line, "error", err)
	}
}

// SendRawLine truncates the line to the maximum frame length minus the CRLF
// terminator, appends the terminator, writes and flushes. A write failure is
// fatal to the current connection: the transport is closed so the read loop
// observes the loss and tears the session down.
//
// SendRawLine serializes concurrent callers at the write; callers that need
// atomic multi-line sequences must hold their own ordering on top.
func (b *Bot) SendRawLine(line string) error {
	sess := b.currentSession()
	if sess == nil {
		return errors.WrapMisuse(errors.ErrNotConnected, "bot", "send", "no live session")
	}

	if max := b.config.MaxLineLength - 2; len(line) > max {
		b.logger.Debug("Truncating over-length line", "length", len(line), "max", max)
		line = line[:max]
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if _, err := sess.writer.WriteString(line + "\r\n"); err != nil {
		sess.close()
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrWriteFailed, err), "bot", "send", "write line")
	}
	if err := sess.writer.Flush(); err != nil {
		sess.close()
		return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrWriteFailed, err), "bot", "send", "flush line")
	}
	b.recordLineSent()
	return nil
}

// Shutdown tears the current connection down. Exactly one caller wins; a
// concurrent call fails with ErrShutdownInProgress and a call after
// completion fails with ErrAlreadyShutdown. When auto-reconnect is enabled
// and noReconnect is false, Shutdown runs the reconnect synchronously and
// blocks until the replacement connection ends too. Parser and direct
// connection resources are released on every exit path.
func (b *Bot) Shutdown(noReconnect bool) error {
	if !b.everConnected.Load() {
		return errors.WrapMisuse(errors.ErrNotConnected, "bot", "shutdown", "bot never connected")
	}
	if err := b.cell.begin(); err != nil {
		return err
	}
	b.setStatus(statusShuttingDown)

	sess := b.currentSession()
	var snap *state.Snapshot

	func() {
		defer func() {
			b.teardownSession(sess)
			b.cell.finish()
			b.setStatus(statusIdle)
		}()
		if sess != nil {
			sess.close()
		}
		snap = b.registry.Snapshot()
		b.registry.Close()
	}()

	if b.config.AutoReconnect && !noReconnect {
		if b.config.AutoRejoin {
			b.setPendingRejoin(snap.Channels)
		}
		if err := b.Reconnect(context.Background()); err != nil {
			b.logger.Error("Automatic reconnect failed", "error", err)
		}
		return nil
	}

	b.dispatch(&event.DisconnectEvent{Base: event.NewBase(b), Snapshot: snap})
	// Terminal teardown: drain the listener manager so pooled workers do
	// not outlive the bot. The disconnect event above is delivered before
	// the drain.
	b.manager.Shutdown()
	return nil
}

// teardownSession releases the finished session's collaborators. Safe with a
// nil session (shutdown before any connect).
func (b *Bot) teardownSession(sess *session) {
	b.setSession(nil)
	if sess == nil {
		return
	}
	if sess.parser != nil {
		sess.parser.Close()
	}
	if sess.dcc != nil {
		sess.dcc.Close()
	}
	if b.config.Ident != nil {
		if tcp, ok := sess.conn.LocalAddr().(*net.TCPAddr); ok {
			b.config.Ident.RemoveEntry(tcp.Port)
		}
	}
}

func (b *Bot) setPendingRejoin(channels []state.ChannelSnapshot) {
	b.rejoinMu.Lock()
	b.pendingRejoin = channels
	b.rejoinMu.Unlock()
}

// replayJoins re-issues JOIN for every channel snapshotted before the last
// disconnect, with each channel's recorded key
func (b *Bot) replayJoins() {
	b.rejoinMu.Lock()
	channels := b.pendingRejoin
	b.pendingRejoin = nil
	b.rejoinMu.Unlock()

	for _, ch := range channels {
		if err := b.Send.JoinChannelWithKey(ch.Name, ch.Key); err != nil {
			b.logger.Warn("Rejoin failed", "channel", ch.Name, "error", err)
		}
	}
}

// dispatch routes one event through the listener manager and, when a bridge
// is configured, republishes it. Bridge failures never disturb dispatch.
func (b *Bot) dispatch(e event.Event) {
	if b.config.Bridge != nil {
		if err := b.config.Bridge.Publish(e); err != nil {
			b.logger.Warn("Bridge publish failed", "event_type", e.Type(), "error", err)
		}
	}
	b.manager.Dispatch(e)
}

func (b *Bot) setStatus(status int) {
	if b.config.Metrics != nil {
		b.config.Metrics.RecordConnectionStatus(b.config.Name, status)
	}
}

func (b *Bot) recordLineReceived() {
	if b.config.Metrics != nil {
		b.config.Metrics.RecordLineReceived(b.config.Name)
	}
}

func (b *Bot) recordLineSent() {
	if b.config.Metrics != nil {
		b.config.Metrics.RecordLineSent(b.config.Name)
	}
}

func (b *Bot) recordProbe() {
	if b.config.Metrics != nil {
		b.config.Metrics.RecordLivenessProbe(b.config.Name)
	}
}

func (b *Bot) recordReconnect(success bool) {
	if b.config.Metrics == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	b.config.Metrics.RecordReconnect(b.config.Name, outcome)
}
