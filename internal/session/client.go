package session

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds connecting and waiting for a reply.
const DefaultTimeout = 5 * time.Second

// Client talks to a listening back-end.
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// Dial connects to the back-end listening on socketPath.
func Dial(socketPath string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to back-end: %w (is `splbe listen` running?)", err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn), timeout: timeout}, nil
}

// Send writes one protocol line.
func (c *Client) Send(line string) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// ReadLine reads one line, waiting at most wait.
func (c *Client) ReadLine(wait time.Duration) (string, error) {
	c.conn.SetReadDeadline(time.Now().Add(wait))
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// IsReply reports whether line answers a command, as opposed to an event.
func IsReply(line string) bool {
	return strings.HasPrefix(line, "result:") || strings.HasPrefix(line, "error:")
}

// Exchange sends line and collects what comes back: events, then the
// reply. Fire-and-forget commands have no reply, so collection also ends
// once nothing arrives for quiet.
func (c *Client) Exchange(line string, quiet time.Duration) ([]string, error) {
	if err := c.Send(line); err != nil {
		return nil, err
	}
	var out []string
	for {
		got, err := c.ReadLine(quiet)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return out, nil
			}
			return out, fmt.Errorf("failed to read reply: %w", err)
		}
		out = append(out, got)
		if IsReply(got) {
			return out, nil
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }
