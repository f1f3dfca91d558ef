package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/easeaico/gift-scout/internal/dialogue"
	"github.com/easeaico/gift-scout/internal/types"
)

// runDemo drives one discovery session from the terminal. It exists to
// exercise the full flow without the HTTP layer.
func runDemo(ctx context.Context, service *dialogue.Service) error {
	quiz := types.QuizAnswers{
		RecipientAge: 30,
		Relationship: "friend",
		Occasion:     "birthday",
		Interests:    []string{"coffee", "hiking"},
		Budget:       60,
		Currency:     "USD",
		Language:     "en",
	}

	sess, err := service.InitSession(ctx, quiz, "")
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	printSession(sess)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: like <hypothesis-id> | answer <track-id> <text> | more <track-id> | quit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var input dialogue.InteractionInput
		switch fields[0] {
		case "quit":
			return nil
		case "like":
			if len(fields) < 2 {
				continue
			}
			input = dialogue.InteractionInput{Type: types.InteractionLike, TargetID: fields[1], TargetType: "hypothesis"}
		case "answer":
			if len(fields) < 3 {
				continue
			}
			input = dialogue.InteractionInput{Type: types.InteractionAnswer, TargetID: fields[1], TargetType: "topic", Value: strings.Join(fields[2:], " ")}
		case "more":
			if len(fields) < 2 {
				continue
			}
			input = dialogue.InteractionInput{Type: types.InteractionLoadMore, TargetID: fields[1], TargetType: "topic"}
		default:
			fmt.Println("unknown command")
			continue
		}

		sess, err = service.Interact(ctx, sess.ID, input)
		if err != nil {
			fmt.Printf("interaction failed: %v\n", err)
			continue
		}
		printSession(sess)
	}
}

func printSession(sess *types.RecommendationSession) {
	fmt.Printf("session %s\n", sess.ID)
	if sess.CurrentProbe != nil {
		fmt.Printf("  probe: %s\n", sess.CurrentProbe.Question)
	}
	for _, track := range sess.Tracks {
		fmt.Printf("  [%s] %s (%s)\n", track.ID, track.Topic, track.Status)
		if track.Step != nil {
			fmt.Printf("    question: %s\n", track.Step.Question)
			for _, option := range track.Step.Options {
				fmt.Printf("      - %s\n", option)
			}
		}
		for _, h := range track.Hypotheses {
			fmt.Printf("    [%s] %s (%d products)\n", h.ID, h.Title, len(h.Products))
			for _, p := range h.Products {
				fmt.Printf("      %.2f %s  %s\n", p.Price, p.Currency, p.Title)
			}
		}
	}
}
