package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	// MaxLineBytes bounds one inbound frame on either transport.
	MaxLineBytes = 64 * 1024
	writeWait    = 10 * time.Second
)

var ErrNameTimeout = errors.New("no display name received in time")

// lineConn carries newline terminated frames over a raw TCP stream.
type lineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func newLineConn(c net.Conn) *lineConn {
	sc := bufio.NewScanner(c)
	sc.Buffer(make([]byte, 0, 4096), MaxLineBytes)
	return &lineConn{conn: c, scanner: sc}
}

func (c *lineConn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

func (c *lineConn) WriteLine(line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	_, err := io.WriteString(c.conn, line+"\n")
	return err
}

// Ping is a no-op; TCP keepalive is enabled at accept time.
func (c *lineConn) Ping() error { return nil }

func (c *lineConn) Close() error { return c.conn.Close() }

func (c *lineConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// readName reads the handshake line with a deadline and clears it again.
func (c *lineConn) readName(timeout time.Duration) (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	name, err := c.ReadLine()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", ErrNameTimeout
		}
		return "", err
	}
	return name, c.conn.SetReadDeadline(time.Time{})
}

// wsConn maps one text message to one frame.
type wsConn struct {
	conn *websocket.Conn
}

func newWSConn(c *websocket.Conn) *wsConn {
	c.SetReadLimit(MaxLineBytes)
	return &wsConn{conn: c}
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(msg), "\r\n"), nil
	}
}

func (c *wsConn) WriteLine(line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Ping() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *wsConn) readName(timeout time.Duration) (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	name, err := c.ReadLine()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", ErrNameTimeout
		}
		return "", fmt.Errorf("read name: %w", err)
	}
	return name, c.conn.SetReadDeadline(time.Time{})
}
