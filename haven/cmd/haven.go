// Command-line interface for the Haven support chat
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"haven/haven/config"
	"haven/haven/controllers"
	"haven/haven/middlewares"
	"haven/haven/observability"
	"haven/haven/sources/psql"
	"haven/haven/sources/psql/dao"
	"haven/haven/support"
	"haven/haven/utils/color"
	httputils "haven/haven/utils/http"
	"haven/haven/utils/logging"
	"haven/haven/utils/types"

	"go.uber.org/zap"
)

const staffTokenTTL = 24 * time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("config: "+err.Error()))
		os.Exit(1)
	}
	if err := logging.InitLoggerWithDir(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("logger: "+err.Error()))
		os.Exit(1)
	}
	defer logging.Sync()

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "chat":
		if len(args) > 1 {
			err = runRemoteChat(args[1])
		} else {
			err = runChat(cfg)
		}
	case "assess":
		err = runAssess(cfg, strings.Join(args[1:], " "))
	case "token":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		err = runToken(cfg, args[1])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError(err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Haven CLI usage:")
	fmt.Println("  haven chat             # chat against the configured database")
	fmt.Println("  haven chat <url>       # chat against a running server")
	fmt.Println("  haven assess <text>    # print the risk assessment for one message")
	fmt.Println("  haven token <staff>    # mint a staff token for the conversation endpoints")
}

func runChat(cfg config.Config) error {
	catalog, err := support.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := psql.NewDatabase(ctx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer db.Close()

	ctrl := controllers.NewChatController(dao.NewConversationDAO(db.DB), catalog, observability.NewMetrics())
	return chatLoop(ctrl.Chat)
}

func runRemoteChat(server string) error {
	endpoint := strings.TrimRight(server, "/") + "/api/chat"
	return chatLoop(func(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
		var resp types.ChatResponse
		if err := httputils.PostJSON(ctx, endpoint, req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

func chatLoop(send func(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)) error {
	fmt.Println(color.ColorInfo("Connected. Type a message, or 'exit' to quit."))

	var conversationID *uint
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.ColorPrompt("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		resp, err := send(context.Background(), types.ChatRequest{Message: line, ConversationID: conversationID})
		if err != nil {
			logging.ErrorLogger.Error("cli chat failed", zap.Error(err))
			fmt.Println(color.ColorError(err.Error()))
			continue
		}
		id := resp.ConversationID
		conversationID = &id

		fmt.Printf("[conversation %d | risk %s]\n", resp.ConversationID, color.ColorRisk(resp.RiskLevel))
		if len(resp.Triggers) > 0 {
			fmt.Println("triggers:", strings.Join(resp.Triggers, ", "))
		}
		fmt.Println(color.ColorBotResponse(resp.Response))
		printResources(resp.RecommendedResources)
		fmt.Println()
	}
	return scanner.Err()
}

func runAssess(cfg config.Config, text string) error {
	catalog, err := support.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	risk := catalog.Assess(text)
	fmt.Println("risk:", color.ColorRisk(risk.Level))
	if len(risk.Triggers) > 0 {
		fmt.Println("triggers:", strings.Join(risk.Triggers, ", "))
	}
	printResources(catalog.Recommend(risk.Level))
	return nil
}

func runToken(cfg config.Config, staff string) error {
	token, err := middlewares.IssueStaffToken(cfg.JWTSecret, staff, staffTokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func printResources(resources []support.Resource) {
	for _, r := range resources {
		contact := r.Phone
		if contact == "" {
			contact = r.Chat
		}
		if contact == "" {
			contact = r.URL
		}
		fmt.Printf("  - %s (%s) %s\n", r.Name, r.Category, contact)
	}
}
