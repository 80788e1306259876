package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/Cyclone1070/claw/internal/agent"
	"github.com/Cyclone1070/claw/internal/ui"
	uiservices "github.com/Cyclone1070/claw/internal/ui/services"
	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session in the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runInteractive(cmd.Context())
		},
	}
}

func createRealUI(model string) *ui.UI {
	spinnerFactory := func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}
	return ui.NewUI(ui.NewUIChannels(), uiservices.NewGlamourRenderer(), spinnerFactory, model)
}

func (a *app) runInteractive(ctx context.Context) error {
	userInterface := createRealUI(a.cfg.Agent.Model)

	chatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var p chatProvider
	var sess *agent.Session
	sessionReady := make(chan struct{})

	// Goroutine #1: initialise, then read-eval loop
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-userInterface.Ready()

		fail := func(format string, args ...any) {
			userInterface.WriteMessage(fmt.Sprintf(format, args...))
			userInterface.WriteMessage("The application cannot start. Press Ctrl+C to exit.")
		}

		var err error
		p, err = a.deps.ProviderFactory(chatCtx, a.cfg)
		if err != nil {
			fail("Error initializing provider: %v", err)
			return
		}

		obs, shutdown, err := newObserver(chatCtx, a.cfg.Observability.Backend, a.cfg.Agent.Name, a.logger)
		if err != nil {
			fail("Error: %v", err)
			return
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(chatCtx)); err != nil {
				a.logger.Warn("observer shutdown failed", "error", err)
			}
		}()

		sess, err = agent.New(chatCtx, agent.Options{
			Config:    a.cfg,
			Workspace: a.workspace,
			Provider:  p,
			Approver:  userInterface,
			Observer:  workflow.Multi(obs, userInterface.Observer()),
			Logger:    a.logger,
		})
		if err != nil {
			fail("Error starting session: %v", err)
			return
		}
		defer sess.Close()
		close(sessionReady)

		for {
			input, err := userInterface.ReadInput(chatCtx, "> ")
			if err != nil {
				return
			}
			res, err := sess.Send(chatCtx, input)
			if err != nil {
				if chatCtx.Err() != nil {
					return
				}
				userInterface.WriteMessage(fmt.Sprintf("Error: %v", err))
				continue
			}
			userInterface.WriteMessage(res.Text)
		}
	}()

	// Goroutine #2: slash commands
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-chatCtx.Done():
				return
			case cmd := <-userInterface.Commands():
				select {
				case <-sessionReady:
				case <-chatCtx.Done():
					return
				}
				switch cmd.Type {
				case "list_models":
					models, err := p.ListModels(chatCtx)
					if err != nil {
						userInterface.WriteMessage(fmt.Sprintf("Error listing models: %v", err))
						continue
					}
					names := make([]string, len(models))
					for i, m := range models {
						names[i] = m.Name
					}
					userInterface.WriteModelList(names)
				case "switch_model":
					model := cmd.Args["model"]
					sess.SetModel(model)
					a.logger.Info("model switched", "model", model)
					userInterface.WriteMessage(fmt.Sprintf("Switched to model: %s", model))
				}
			}
		}
	}()

	err := userInterface.Start()
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("error running UI: %w", err)
	}
	return nil
}
