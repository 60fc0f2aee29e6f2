// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asyrjasalo/augent"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the augent version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(augent.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
