package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ascheel/goimmich/internal/uploadengine"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage stored user credentials and server URLs",
	}
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserDeleteCmd())
	cmd.AddCommand(newUserDefaultCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		server     string
		key        string
		setDefault bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new user configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config, err := uploadengine.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			config.AddUser(name, uploadengine.UserConfig{Server: server, APIKey: key}, setDefault)
			if err := config.Save(flagConfig); err != nil {
				return err
			}
			fmt.Printf("User %q added successfully.\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "server URL")
	cmd.Flags().StringVar(&key, "key", "", "API key")
	cmd.Flags().BoolVarP(&setDefault, "default", "d", false, "set this user as the default")
	cmd.MarkFlagRequired("server")
	cmd.MarkFlagRequired("key")
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := uploadengine.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			if len(config.Users) == 0 {
				fmt.Println("No users configured.")
				return nil
			}
			fmt.Println("Users:")
			for _, name := range config.UserNames() {
				current := " "
				if name == config.CurrentUser {
					current = "*"
				}
				fmt.Printf(" %s %s: %s\n", current, name, config.Users[name].Server)
			}
			return nil
		},
	}
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user configuration by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config, err := uploadengine.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			if !config.DeleteUser(name) {
				return fmt.Errorf("user %q not found", name)
			}
			if err := config.Save(flagConfig); err != nil {
				return err
			}
			fmt.Printf("User %q deleted.\n", name)
			return nil
		},
	}
}

func newUserDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Set a specific user as the default for uploads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config, err := uploadengine.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			if err := config.SetDefault(name); err != nil {
				return err
			}
			if err := config.Save(flagConfig); err != nil {
				return err
			}
			fmt.Printf("Default user set to %q.\n", name)
			return nil
		},
	}
}
