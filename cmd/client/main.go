// Package main provides a simple CLI client for the chat WebSocket server.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GarvitAggarwal178/real-time-chat-api/internal/protocol"
)

// Client represents a WebSocket chat client.
type Client struct {
	conn     *websocket.Conn
	username string
	done     chan struct{}
}

// NewClient connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &Client{conn: conn, done: make(chan struct{})}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// Join claims a username and waits for the welcome reply.
func (c *Client) Join(username string) ([]string, error) {
	msg := protocol.JoinMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeJoin, Ts: time.Now().UnixMilli()},
		Username:    username,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("write join: %w", err)
	}

	// Presence broadcasts can arrive before the welcome; skip past them.
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read welcome: %w", err)
		}
		var base protocol.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			return nil, fmt.Errorf("unmarshal welcome: %w", err)
		}
		switch base.Type {
		case protocol.TypeError:
			var errMsg protocol.ErrorMessage
			json.Unmarshal(data, &errMsg)
			return nil, fmt.Errorf("join failed: %s - %s", errMsg.Code, errMsg.Message)
		case protocol.TypeWelcome:
			var welcome protocol.WelcomeMessage
			if err := json.Unmarshal(data, &welcome); err != nil {
				return nil, fmt.Errorf("unmarshal welcome: %w", err)
			}
			c.username = username
			return welcome.OnlineUsers, nil
		default:
			continue
		}
	}
}

// Send sends a direct message to another user.
func (c *Client) Send(to, content string) error {
	msg := protocol.SendMessage{
		BaseMessage: protocol.BaseMessage{Type: protocol.TypeSend, Ts: time.Now().UnixMilli()},
		To:          to,
		Content:     content,
	}
	return c.conn.WriteJSON(msg)
}

// ReadMessages reads and prints events from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}

			var base protocol.BaseMessage
			if err := json.Unmarshal(data, &base); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}

			switch base.Type {
			case protocol.TypeNewMessage:
				var event protocol.NewMessageEvent
				json.Unmarshal(data, &event)
				fmt.Printf("\n[%s] %s\n> ", event.Message.From, event.Message.Content)
			case protocol.TypeSent:
				var ack protocol.SentMessage
				json.Unmarshal(data, &ack)
				fmt.Printf("\n(sent #%d to %s)\n> ", ack.Message.ID, ack.Message.To)
			case protocol.TypePresenceChanged:
				var presence protocol.PresenceChangedMessage
				json.Unmarshal(data, &presence)
				fmt.Printf("\n(online: %s)\n> ", strings.Join(presence.OnlineUsers, ", "))
			case protocol.TypeError:
				var errMsg protocol.ErrorMessage
				json.Unmarshal(data, &errMsg)
				fmt.Printf("\n(error: %s - %s)\n> ", errMsg.Code, errMsg.Message)
			default:
				fmt.Printf("\n[%s] %s\n> ", base.Type, string(data))
			}
		}
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8090/ws", "WebSocket server address")
	username := flag.String("user", "", "username to join as")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *username == "" {
		log.Fatal("-user is required")
	}

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	online, err := client.Join(*username)
	if err != nil {
		log.Fatalf("Join failed: %v", err)
	}

	fmt.Printf("Joined as %s. Online: %s\n", *username, strings.Join(online, ", "))
	fmt.Println("Send with: <recipient> <message>   (/quit to exit)")

	go client.ReadMessages()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		default:
			if !scanner.Scan() {
				return
			}

			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}
			if input == "/quit" {
				fmt.Println("Bye!")
				return
			}

			to, content, ok := strings.Cut(input, " ")
			if !ok {
				fmt.Println("usage: <recipient> <message>")
				continue
			}
			if err := client.Send(to, content); err != nil {
				log.Printf("Send error: %v", err)
			}
		}
	}
}
