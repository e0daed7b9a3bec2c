// Command rantsmithctl is a terminal front end for the RantSmith API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rantsmith/backend/client"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	baseURL := os.Getenv("RANTSMITH_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	api := client.New(baseURL)
	session := client.NewSessionHolder(api, logger)

	switch args[0] {
	case "register":
		return register(ctx, session, args[1:])
	case "login":
		return login(ctx, session, args[1:])
	case "logout":
		session.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "whoami":
		return whoami(ctx, session)
	case "submit":
		return submit(ctx, api, logger, args[1:])
	case "history":
		return history(ctx, api)
	case "chat":
		return chat(ctx, api, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Println(`usage: rantsmithctl <command> [args]

commands:
  register <username> <email> <password>
  login <email> <password>
  logout
  whoami
  submit <type> <tone> <content...>
  history
  chat [personality]`)
}

func register(ctx context.Context, session *client.SessionHolder, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: register <username> <email> <password>")
	}
	result := session.Register(ctx, args[0], args[1], args[2])
	if !result.OK {
		return fmt.Errorf("registration failed: %s", result.Message)
	}
	fmt.Printf("welcome, %s\n", result.User.Username)
	return nil
}

func login(ctx context.Context, session *client.SessionHolder, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	result := session.Login(ctx, args[0], args[1])
	if !result.OK {
		return fmt.Errorf("login failed: %s", result.Message)
	}
	fmt.Printf("logged in as %s\n", result.User.Username)
	return nil
}

func whoami(ctx context.Context, session *client.SessionHolder) error {
	if session.Resume(ctx) != client.StateAuthenticated {
		fmt.Println("not logged in")
		return nil
	}
	user := session.User()
	fmt.Printf("%s <%s>\n", user.Username, user.Email)
	return nil
}

func submit(ctx context.Context, api *client.Client, logger *slog.Logger, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: submit <type> <tone> <content...>")
	}

	notify := client.NewNotificationCenter()
	orch := client.NewOrchestrator(api, notify, logger)

	out, err := orch.Transform(ctx, client.Input{
		Type:    args[0],
		Tone:    args[1],
		Content: strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}

	fmt.Println(out.Text)
	fmt.Printf("\n[model: %s]\n", out.ModelUsed)
	if out.Audio != "" {
		fmt.Printf("[audio: %d bytes]\n", len(out.Audio))
	}
	if out.Image != "" {
		fmt.Printf("[image: %d bytes]\n", len(out.Image))
	}
	if out.Video != "" {
		fmt.Printf("[video: %d bytes]\n", len(out.Video))
	}
	return nil
}

func history(ctx context.Context, api *client.Client) error {
	rants, total, err := api.History(ctx, 1, 20)
	if err != nil {
		return err
	}
	fmt.Printf("%d rants\n", total)
	for _, rant := range rants {
		excerpt := rant.Content
		if len(excerpt) > 60 {
			excerpt = excerpt[:60] + "..."
		}
		fmt.Printf("%s  [%s/%s]  %s\n", rant.CreatedAt, rant.TransformationType, rant.Tone, excerpt)
	}
	return nil
}

func chat(ctx context.Context, api *client.Client, args []string) error {
	personality := "supportive"
	if len(args) > 0 {
		personality = args[0]
	}

	session := client.NewChatSession(api, personality)
	for _, message := range session.Messages() {
		fmt.Printf("elaichi> %s\n", message.Text)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("you> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text == "quit" || text == "exit" {
			break
		}
		if rest, ok := strings.CutPrefix(text, "/personality "); ok {
			session.SetPersonality(strings.TrimSpace(rest))
			for _, message := range session.Messages() {
				fmt.Printf("elaichi> %s\n", message.Text)
			}
			fmt.Print("you> ")
			continue
		}

		reply := session.Send(ctx, text)
		fmt.Printf("elaichi> %s\n", reply.Text)
		fmt.Print("you> ")
	}
	return scanner.Err()
}
