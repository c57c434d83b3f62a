package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/config"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/conversation"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
)

var (
	latitude  float64
	longitude float64
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the pregnancy care assistant",
	Long: `Log in, load your medical documents, answer a few profile questions
and chat with the assistant. Type 'exit' to end the chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		svc := newServices(cfg)

		ctx := cmd.Context()
		login, logout, err := svc.login(ctx)
		if err != nil {
			return err
		}
		defer logout()

		out := cmd.OutOrStdout()
		in := bufio.NewScanner(cmd.InOrStdin())

		boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
		boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		s := svc.engine.Session(login.User)
		fmt.Fprintln(out, "Loading your medical documents...")
		report := s.LoadDocuments(ctx, login.Secret)
		fmt.Fprintln(out, report.Notice.Text)
		fmt.Fprintln(out)

		var coords *geo.Coordinates
		if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
			coords = &geo.Coordinates{Latitude: latitude, Longitude: longitude}
		}

		for {
			profile, ok := askProfile(in, out)
			if !ok {
				return nil
			}
			err := s.Start(ctx, profile, coords)
			var verr *conversation.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(out, red(verr.Error()))
				continue
			}
			if err != nil {
				return err
			}
			break
		}
		defer s.End()

		fmt.Fprintln(out)
		fmt.Fprintln(out, boldCyan("Assistant: ")+conversation.Greeting)
		fmt.Fprintln(out, "Type your message and press Enter. Type 'exit' to end the chat.")

		for {
			fmt.Fprint(out, boldGreen("You: "))
			if !in.Scan() {
				return nil
			}
			text := in.Text()
			if strings.ToLower(strings.TrimSpace(text)) == "exit" {
				return nil
			}

			exchange, err := s.Send(ctx, text)
			if errors.Is(err, conversation.ErrEmptyMessage) {
				continue
			}
			if err != nil {
				return err
			}

			reply := exchange.Assistant.Text
			if exchange.Assistant.IsError {
				reply = red(reply)
			}
			fmt.Fprintln(out, boldCyan("Assistant: ")+reply)
			fmt.Fprintln(out)
		}
	},
}

func init() {
	chatCmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude used to tailor advice to your location")
	chatCmd.Flags().Float64Var(&longitude, "lng", 0, "Longitude used to tailor advice to your location")
	rootCmd.AddCommand(chatCmd)
}

type question struct {
	prompt string
	field  *string
}

// askProfile reads the profile questions. ok is false on end of input.
func askProfile(in *bufio.Scanner, out io.Writer) (conversation.Profile, bool) {
	var p conversation.Profile
	questions := []question{
		{"How are you feeling today?", &p.Feeling},
		{"Age", &p.Age},
		{"Weeks pregnant", &p.WeeksPregnant},
		{"Pre-existing conditions (optional)", &p.PreExistingConditions},
		{"Specific concerns (optional)", &p.SpecificConcerns},
	}

	for _, q := range questions {
		fmt.Fprintf(out, "%s: ", q.prompt)
		if !in.Scan() {
			return conversation.Profile{}, false
		}
		*q.field = in.Text()
	}
	return p, true
}
