// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"strings"

	"github.com/kestrel-holdings/rentalcore/db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// migrateCmd re-applies the schema migrations against an already
// configured deployment, without running the interactive init wizard.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply any schema migrations that have not yet run",
	Run: func(cmd *cobra.Command, args []string) {
		dbURL := strings.Replace(viper.GetString("DBUrl"), "postgres://", "pgx5://", -1)
		if dbURL == "" || dbURL == "pgx5://" {
			log.Fatal().Msg("no DBUrl configured; run `rentalcore init` first")
		}

		if err := db.Migrate(dbURL); err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("schema migrations applied")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
