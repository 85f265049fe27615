package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

// watchStream follows the live transcript websocket in the background and
// prints every event. The returned channel closes when the stream ends.
func watchStream(backendURL, callID, token string) <-chan struct{} {
	done := make(chan struct{})

	u, err := url.Parse(backendURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid backend url: %v\n", err)
		close(done)
		return done
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/calls/" + callID + "/stream"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stream dial failed: %v\n", err)
		close(done)
		return done
	}

	go func() {
		defer close(done)
		defer conn.Close()
		for {
			var evt struct {
				Sender    string `json:"sender"`
				Text      string `json:"text"`
				CallEnded bool   `json:"call_ended"`
			}
			if err := conn.ReadJSON(&evt); err != nil {
				return
			}
			fmt.Printf("[stream] %s: %s\n", evt.Sender, evt.Text)
			if evt.CallEnded {
				fmt.Println("[stream] call ended")
				return
			}
		}
	}()
	return done
}
