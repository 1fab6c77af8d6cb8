// Command client is a terminal websocket client used to try the server by hand.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"social-chat/domain/chat"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if !cfg.Colours {
		color.Disable()
	}

	header := http.Header{"Authorization": []string{"Bearer " + cfg.Token}}
	conn, resp, err := websocket.DefaultDialer.Dial(cfg.Addr, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("unable to connect to %s (%s): %w", cfg.Addr, resp.Status, err)
		}
		return fmt.Errorf("unable to connect to %s: %w", cfg.Addr, err)
	}
	defer conn.Close()
	color.New(color.BgBlack, color.FgGreen).Printf("  ====== connected to %s ======  \n", cfg.Addr)
	fmt.Println(usage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		defer stop()
		for {
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				color.Red.Printf("connection closed: %v\n", err)
				return
			}
			if cfg.DebugJSON {
				color.Gray.Printf("<- %s %s\n", f.Event, string(f.Data))
				continue
			}
			line := render(f)
			if f.Event == chat.EventError {
				color.Red.Println(line)
			} else {
				color.Cyan.Println(line)
			}
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return closeGracefully(conn)
		case line, ok := <-lines:
			line = strings.TrimSpace(line)
			if !ok || line == "/quit" {
				return closeGracefully(conn)
			}
			if line == "" {
				continue
			}
			f, err := parseLine(line)
			if err != nil {
				color.Yellow.Printf("%v\n%s\n", err, usage)
				continue
			}
			if err := conn.WriteJSON(f); err != nil {
				return err
			}
		}
	}
}

func closeGracefully(conn *websocket.Conn) error {
	return conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
}
