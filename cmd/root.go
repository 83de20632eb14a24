package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rolltable",
	Short: "RollTable is a realtime tabletop room session service.",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
