// callsim drives a simulated call against a running sales-agent server: it
// starts a call, watches the live transcript over the websocket stream, and
// sends customer messages read from -messages or stdin.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		backendURL string
		name       string
		phone      string
		mode       string
		messages   string
		timeoutSec int
	)
	flag.StringVar(&backendURL, "backend", "http://localhost:8001", "backend base URL")
	flag.StringVar(&name, "name", "Alice", "customer name")
	flag.StringVar(&phone, "phone", "+15551234", "customer phone number")
	flag.StringVar(&mode, "mode", "rules", "response mode: rules or rag")
	flag.StringVar(&messages, "messages", "", "comma-separated customer messages; empty reads stdin")
	flag.IntVar(&timeoutSec, "timeout", 30, "HTTP timeout seconds")
	flag.Parse()

	respondPath := "/respond/"
	if mode == "rag" {
		respondPath = "/respond-rag/"
	}

	client := &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}

	callID, token, greeting, err := startCall(client, backendURL, name, phone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start call: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("call %s started\nagent: %s\n", callID, greeting)

	streamDone := watchStream(backendURL, callID, token)

	for msg := range customerMessages(messages) {
		fmt.Printf("customer: %s\n", msg)
		reply, shouldEnd, err := respond(client, backendURL+respondPath+callID, token, msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "respond: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("agent: %s\n", reply)
		if shouldEnd {
			fmt.Println("call ended")
			break
		}
	}

	select {
	case <-streamDone:
	case <-time.After(2 * time.Second):
	}
}

func startCall(client *http.Client, backendURL, name, phone string) (callID, token, greeting string, err error) {
	body, _ := json.Marshal(map[string]string{"customer_name": name, "phone_number": phone})
	resp, err := client.Post(backendURL+"/start-call", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", "", "", fmt.Errorf("bad status %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		CallID       string `json:"call_id"`
		FirstMessage string `json:"first_message"`
		Token        string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", "", err
	}
	return out.CallID, out.Token, out.FirstMessage, nil
}

func respond(client *http.Client, endpoint, token, message string) (reply string, shouldEnd bool, err error) {
	body, _ := json.Marshal(map[string]string{"message": message})
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", false, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Reply         string `json:"reply"`
		ShouldEndCall bool   `json:"should_end_call"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, err
	}
	return out.Reply, out.ShouldEndCall, nil
}

func customerMessages(list string) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		if list != "" {
			for _, m := range strings.Split(list, ",") {
				if m = strings.TrimSpace(m); m != "" {
					ch <- m
				}
			}
			return
		}
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				ch <- line
			}
		}
	}()
	return ch
}
