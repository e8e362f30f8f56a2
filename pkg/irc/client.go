package irc

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/pkg/clock"
)

var ErrNotConnected = errors.New("irc: not connected")

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "disconnected"
	}
}

// PrivateMessage is an inbound PRIVMSG. Target is a channel or the bot's nick.
type PrivateMessage struct {
	Sender string
	Target string
	Text   string
}

// Handler receives inbound messages off the read loop, so it may send.
// Messages from one sender are handled one at a time, in arrival order.
type Handler func(ctx context.Context, msg PrivateMessage)

type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type Options struct {
	Server   string
	Port     int
	TLS      bool
	Nick     string
	AltNick  string
	Password string
	Channels []string
	// Owner receives join and part confirmations. Empty disables them.
	Owner string

	SettleDelay       time.Duration
	RecoveryWait      time.Duration
	KeepAliveInterval time.Duration
	ReconnectBase     time.Duration
	ReconnectCap      time.Duration
	PaceInitial       time.Duration
	PaceMax           time.Duration
	PaceGrowth        float64
	FloodPause        time.Duration

	FloodNotice      string
	JoinNoticeFormat string
	PartNoticeFormat string

	Dialer DialFunc
}

func (o *Options) applyDefaults() {
	if o.AltNick == "" {
		o.AltNick = o.Nick + "_"
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 5 * time.Second
	}
	if o.RecoveryWait <= 0 {
		o.RecoveryWait = 2 * time.Second
	}
	if o.KeepAliveInterval <= 0 {
		o.KeepAliveInterval = 60 * time.Second
	}
	if o.ReconnectBase <= 0 {
		o.ReconnectBase = 10 * time.Second
	}
	if o.ReconnectCap <= 0 {
		o.ReconnectCap = 300 * time.Second
	}
	if o.PaceInitial <= 0 {
		o.PaceInitial = 1500 * time.Millisecond
	}
	if o.PaceMax <= 0 {
		o.PaceMax = 5 * time.Second
	}
	if o.PaceGrowth < 1 {
		o.PaceGrowth = 1.05
	}
	if o.FloodPause <= 0 {
		o.FloodPause = 15 * time.Second
	}
	if o.JoinNoticeFormat == "" {
		o.JoinNoticeFormat = "Joined %s."
	}
	if o.PartNoticeFormat == "" {
		o.PartNoticeFormat = "Left %s."
	}
}

type outbound struct {
	line string
	done chan error
}

// session is the state of one physical connection.
type session struct {
	conn    net.Conn
	writeMu sync.Mutex
	queue   chan outbound
	closed  chan struct{}
	once    sync.Once
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	inboxMu sync.Mutex
	inbox   map[string][]PrivateMessage // keyed by lowercased sender
}

func newSession(conn net.Conn, cancel context.CancelFunc) *session {
	return &session{
		conn:   conn,
		queue:  make(chan outbound, 64),
		closed: make(chan struct{}),
		cancel: cancel,
		inbox:  make(map[string][]PrivateMessage),
	}
}

func (s *session) close() {
	s.once.Do(func() {
		s.cancel()
		s.conn.Close()
		close(s.closed)
	})
}

// Client keeps one IRC connection alive and paces everything it sends.
type Client struct {
	opts    Options
	logger  logger.ILogger
	sleeper clock.Sleeper
	pacer   *pacer

	mu          sync.RWMutex
	sess        *session
	state       State
	currentNick string
	recovering  bool
	handler     Handler

	attempt  atomic.Int32
	quitting atomic.Bool
}

func NewClient(opts Options, log logger.ILogger, sleeper clock.Sleeper) *Client {
	opts.applyDefaults()
	if sleeper == nil {
		sleeper = clock.Real{}
	}
	return &Client{
		opts:        opts,
		logger:      log,
		sleeper:     sleeper,
		pacer:       newPacer(opts.PaceInitial, opts.PaceMax, opts.PaceGrowth, opts.FloodPause),
		currentNick: opts.Nick,
	}
}

func (c *Client) SetHandler(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) CurrentNick() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentNick
}

// ReconnectDelay is min(base*2^attempt, cap).
func (c *Client) ReconnectDelay(attempt int) time.Duration {
	if attempt >= 30 {
		return c.opts.ReconnectCap
	}
	d := c.opts.ReconnectBase * time.Duration(1<<uint(attempt))
	if d > c.opts.ReconnectCap || d <= 0 {
		return c.opts.ReconnectCap
	}
	return d
}

// Run connects and reconnects until ctx is done or Quit is called.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.connectAndRun(ctx); err != nil {
			c.logger.Warn(logger.ModuleIRC, "Connection cycle ended", map[string]interface{}{
				"server": c.addr(),
				"error":  err.Error(),
			})
		}

		if c.quitting.Load() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempt := int(c.attempt.Add(1) - 1)
		delay := c.ReconnectDelay(attempt)
		c.logger.Info(logger.ModuleIRC, "Reconnecting after delay", map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
		})
		if err := c.sleeper.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Client) addr() string {
	return net.JoinHostPort(c.opts.Server, strconv.Itoa(c.opts.Port))
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	if c.opts.Dialer != nil {
		return c.opts.Dialer(ctx, "tcp", c.addr())
	}
	if c.opts.TLS {
		d := &tls.Dialer{Config: &tls.Config{ServerName: c.opts.Server}}
		return d.DialContext(ctx, "tcp", c.addr())
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", c.addr())
}

func (c *Client) connectAndRun(ctx context.Context) error {
	c.setState(StateConnecting)
	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("dial %s: %w", c.addr(), err)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	sess := newSession(conn, cancel)

	c.mu.Lock()
	c.sess = sess
	c.state = StateUnauthenticated
	c.currentNick = c.opts.Nick
	c.recovering = false
	c.mu.Unlock()
	defer c.teardown(sess)

	c.logger.Info(logger.ModuleIRC, "Connected to IRC server", map[string]interface{}{
		"server": c.addr(),
		"tls":    c.opts.TLS,
	})

	if err := c.register(sess); err != nil {
		return err
	}
	if err := c.sleeper.Sleep(sessCtx, c.opts.SettleDelay); err != nil {
		return err
	}

	sess.wg.Add(3)
	go func() {
		defer sess.wg.Done()
		<-sessCtx.Done()
		sess.close()
	}()
	go func() {
		defer sess.wg.Done()
		c.writeLoop(sessCtx, sess)
	}()
	go func() {
		defer sess.wg.Done()
		c.keepAlive(sessCtx, sess)
	}()

	return c.readLoop(sessCtx, sess)
}

func (c *Client) teardown(sess *session) {
	c.mu.Lock()
	if c.sess == sess {
		c.sess = nil
	}
	c.state = StateDisconnected
	c.recovering = false
	c.mu.Unlock()

	sess.close()
	sess.wg.Wait()
	c.pacer.reset()

	c.logger.Info(logger.ModuleIRC, "Disconnected from IRC server", map[string]interface{}{
		"server": c.addr(),
	})
}

func (c *Client) register(sess *session) error {
	if c.opts.Password != "" {
		if err := c.writeRaw(sess, "PASS "+c.opts.Password); err != nil {
			return err
		}
	}
	if err := c.writeRaw(sess, "NICK "+c.opts.Nick); err != nil {
		return err
	}
	return c.writeRaw(sess, fmt.Sprintf("USER %s 0 * :%s", c.opts.Nick, c.opts.Nick))
}

// writeRaw bypasses pacing. A failed write ends the session.
func (c *Client) writeRaw(sess *session, line string) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	if _, err := sess.conn.Write([]byte(line + "\r\n")); err != nil {
		sess.cancel()
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Client) writeLoop(ctx context.Context, sess *session) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-sess.queue:
			if err := c.writeRaw(sess, out.line); err != nil {
				out.done <- err
				return
			}
			// The line is on the wire; the pause only holds back the next one.
			_ = c.sleeper.Sleep(ctx, c.pacer.next())
			out.done <- nil
		}
	}
}

func (c *Client) keepAlive(ctx context.Context, sess *session) {
	ticker := time.NewTicker(c.opts.KeepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writeRaw(sess, "PING :"+c.opts.Server); err != nil {
				return
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, sess *session) error {
	reader := bufio.NewReaderSize(sess.conn, 4096)
	for {
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			c.dispatch(ctx, sess, line)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, sess *session, line string) {
	msg, err := ParseLine(line)
	if err != nil {
		c.logger.Debug(logger.ModuleIRC, "Dropping malformed line", map[string]interface{}{
			"line": line,
		})
		return
	}

	switch msg.Command {
	case CmdPing:
		token := msg.Param(0)
		if err := c.writeRaw(sess, "PONG :"+token); err != nil {
			return
		}
	case RplWelcome:
		c.onWelcome(ctx, sess, msg)
	case ErrNicknameInUse:
		c.onNicknameInUse(ctx, sess)
	case ErrTargetTooFast:
		c.onFloodWarning(ctx, sess, msg)
	case CmdNick:
		c.mu.Lock()
		if msg.Nick() == c.currentNick && msg.Param(0) != "" {
			c.currentNick = msg.Param(0)
		}
		c.mu.Unlock()
	case CmdPrivmsg:
		sender := msg.Nick()
		if sender == "" || len(msg.Params) < 2 {
			return
		}
		c.mu.RLock()
		handler := c.handler
		c.mu.RUnlock()
		if handler != nil {
			c.deliver(ctx, sess, handler, PrivateMessage{Sender: sender, Target: msg.Params[0], Text: msg.Params[1]})
		}
	case CmdError:
		c.logger.Warn(logger.ModuleIRC, "Server closed the link", map[string]interface{}{
			"reason": msg.Param(0),
		})
		sess.cancel()
	}
}

// deliver queues msg for its sender and starts a worker when none is
// draining that sender's queue. The read loop never waits on the handler.
func (c *Client) deliver(ctx context.Context, sess *session, handler Handler, msg PrivateMessage) {
	key := strings.ToLower(msg.Sender)

	sess.inboxMu.Lock()
	queued, busy := sess.inbox[key]
	sess.inbox[key] = append(queued, msg)
	sess.inboxMu.Unlock()
	if busy {
		return
	}

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		for {
			sess.inboxMu.Lock()
			queued := sess.inbox[key]
			if len(queued) == 0 {
				delete(sess.inbox, key)
				sess.inboxMu.Unlock()
				return
			}
			next := queued[0]
			sess.inbox[key] = queued[1:]
			sess.inboxMu.Unlock()

			handler(ctx, next)
		}
	}()
}

func (c *Client) onWelcome(ctx context.Context, sess *session, msg *Message) {
	c.mu.Lock()
	c.state = StateAuthenticated
	if nick := msg.Param(0); nick != "" {
		c.currentNick = nick
	}
	nick := c.currentNick
	c.mu.Unlock()
	c.attempt.Store(0)

	c.logger.Info(logger.ModuleIRC, "Registered with server", map[string]interface{}{
		"nick": nick,
	})

	for _, channel := range c.opts.Channels {
		if err := c.writeRaw(sess, "JOIN "+channel); err != nil {
			return
		}
		c.notifyOwner(ctx, c.opts.JoinNoticeFormat, channel)
	}
}

func (c *Client) onNicknameInUse(ctx context.Context, sess *session) {
	c.mu.Lock()
	if c.state != StateUnauthenticated || c.recovering {
		c.mu.Unlock()
		return
	}
	c.recovering = true
	c.mu.Unlock()

	c.logger.Warn(logger.ModuleIRC, "Nickname in use, starting recovery", map[string]interface{}{
		"nick":     c.opts.Nick,
		"alt_nick": c.opts.AltNick,
	})

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		defer func() {
			c.mu.Lock()
			c.recovering = false
			c.mu.Unlock()
		}()
		c.recoverNick(ctx, sess)
	}()
}

func (c *Client) recoverNick(ctx context.Context, sess *session) {
	steps := []struct {
		line string
		wait bool
	}{
		{line: "NICK " + c.opts.AltNick},
		{line: fmt.Sprintf("PRIVMSG NickServ :RECOVER %s %s", c.opts.Nick, c.opts.Password), wait: true},
		{line: fmt.Sprintf("PRIVMSG NickServ :RELEASE %s %s", c.opts.Nick, c.opts.Password), wait: true},
		{line: "NICK " + c.opts.Nick},
	}
	for _, step := range steps {
		if err := c.writeRaw(sess, step.line); err != nil {
			return
		}
		if step.wait {
			if err := c.sleeper.Sleep(ctx, c.opts.RecoveryWait); err != nil {
				return
			}
		}
	}
}

func (c *Client) onFloodWarning(ctx context.Context, sess *session, msg *Message) {
	target := msg.Param(1)
	armed := c.pacer.flood()

	c.logger.Warn(logger.ModuleIRC, "Excess flood warning, slowing down", map[string]interface{}{
		"target":    target,
		"new_event": armed,
	})

	if !armed || target == "" || c.opts.FloodNotice == "" {
		return
	}
	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		if err := c.Send(ctx, target, c.opts.FloodNotice); err != nil {
			c.logger.Debug(logger.ModuleIRC, "Flood notice not delivered", map[string]interface{}{
				"target": target,
				"error":  err.Error(),
			})
		}
	}()
}

// notifyOwner does not block the caller; Send gives up when the session ends.
func (c *Client) notifyOwner(ctx context.Context, format, channel string) {
	if c.opts.Owner == "" {
		return
	}
	go func() {
		_ = c.Send(ctx, c.opts.Owner, fmt.Sprintf(format, channel))
	}()
}

func (c *Client) session() *session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

// Send queues a PRIVMSG behind the shared pacing sequence and returns once
// it has been written and its pacing delay has elapsed. ctx only bounds the
// wait for a queue slot; a queued line is always delivered while the
// connection lives.
func (c *Client) Send(ctx context.Context, target, text string) error {
	text = sanitize(text)
	if text == "" {
		return nil
	}
	sess := c.session()
	if sess == nil {
		return ErrNotConnected
	}

	out := outbound{
		line: fmt.Sprintf("%s %s :%s", CmdPrivmsg, sanitize(target), text),
		done: make(chan error, 1),
	}
	select {
	case sess.queue <- out:
	case <-sess.closed:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-out.done:
		return err
	case <-sess.closed:
		return ErrNotConnected
	}
}

func (c *Client) Join(ctx context.Context, channel string) error {
	sess := c.session()
	if sess == nil {
		return ErrNotConnected
	}
	if err := c.writeRaw(sess, "JOIN "+sanitize(channel)); err != nil {
		return err
	}
	c.logger.Info(logger.ModuleIRC, "Joining channel", map[string]interface{}{"channel": channel})
	c.notifyOwner(ctx, c.opts.JoinNoticeFormat, channel)
	return nil
}

func (c *Client) Part(ctx context.Context, channel string) error {
	sess := c.session()
	if sess == nil {
		return ErrNotConnected
	}
	if err := c.writeRaw(sess, "PART "+sanitize(channel)); err != nil {
		return err
	}
	c.logger.Info(logger.ModuleIRC, "Leaving channel", map[string]interface{}{"channel": channel})
	c.notifyOwner(ctx, c.opts.PartNoticeFormat, channel)
	return nil
}

// Quit sends QUIT and closes the connection; Run then returns nil.
func (c *Client) Quit(reason string) error {
	c.quitting.Store(true)
	sess := c.session()
	if sess == nil {
		return nil
	}
	err := c.writeRaw(sess, "QUIT :"+sanitize(reason))
	sess.cancel()
	return err
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
