package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a message and print the conversation",
	Long: `Send a message to the reply service. Without --conversation a new
conversation is started; with it, the message continues that conversation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a file and record the outcome in a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Print a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start an empty conversation",
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [index]",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var renameCmd = &cobra.Command{
	Use:   "rename [index] [title]",
	Short: "Rename a conversation",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRename,
}

func init() {
	sendCmd.Flags().IntP("conversation", "c", -1, "Index of the conversation to continue")
	uploadCmd.Flags().IntP("conversation", "c", -1, "Index of the conversation to record the upload in")
}

func runSend(cmd *cobra.Command, args []string) error {
	index, _ := cmd.Flags().GetInt("conversation")
	text := strings.Join(args, " ")

	return run(cmd, func(a *app) error {
		if err := a.selectConversation(cmd, index); err != nil {
			return err
		}
		if err := a.widget.Send(cmd.Context(), text); err != nil {
			return err
		}
		return a.showActive(cmd)
	})
}

func runUpload(cmd *cobra.Command, args []string) error {
	index, _ := cmd.Flags().GetInt("conversation")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return run(cmd, func(a *app) error {
		if err := a.selectConversation(cmd, index); err != nil {
			return err
		}
		if err := a.widget.Upload(cmd.Context(), f.Name(), f); err != nil {
			return err
		}
		return a.showActive(cmd)
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	return run(cmd, func(a *app) error {
		return a.renderer.RenderHistory(cmd.Context(), a.widget.Store().Snapshot())
	})
}

func runShow(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	return run(cmd, func(a *app) error {
		if err := a.selectConversation(cmd, index); err != nil {
			return err
		}
		return a.showActive(cmd)
	})
}

func runNew(cmd *cobra.Command, _ []string) error {
	return run(cmd, func(a *app) error {
		a.widget.Store().StartNewConversation(cmd.Context())
		return a.renderer.RenderHistory(cmd.Context(), a.widget.Store().Snapshot())
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	return run(cmd, func(a *app) error {
		store := a.widget.Store()
		if !store.DeleteConversation(cmd.Context(), index) {
			return fmt.Errorf("no conversation at index %d (have %d)", index, store.Len())
		}
		return a.renderer.RenderHistory(cmd.Context(), store.Snapshot())
	})
}

func runRename(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	title := strings.Join(args[1:], " ")

	return run(cmd, func(a *app) error {
		store := a.widget.Store()
		if !store.RenameConversation(cmd.Context(), index, title) {
			return fmt.Errorf("cannot rename conversation %d to %q", index, title)
		}
		return a.renderer.RenderHistory(cmd.Context(), store.Snapshot())
	})
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid conversation index %q", s)
	}
	return index, nil
}
