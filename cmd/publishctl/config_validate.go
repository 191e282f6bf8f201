package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configValidateCmd = &cobra.Command{
	Use:   "config-validate",
	Short: "Load and validate settings, the selector bundle, and the instruction bundle",
	RunE:  runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	fmt.Println("settings, selector bundle, and instruction bundle all valid")
	return nil
}
