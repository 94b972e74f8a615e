package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Medalboard"
	s.app.Usage = "Medal ownership and transfer service"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the TOML config file",
			EnvVars: []string{"CONFIG_FILE"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it main service included all apis.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Run only the migrator of this version",
				},
			},
			Description: `Used to create tables and run the versioned migrators.`,
		},
		{
			Action:   s.startToken,
			Name:     "token",
			Usage:    "Issue an access token",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user",
					Usage:    "Id or username of the user",
					Required: true,
				},
			},
			Description: `Used by operators to issue an access token for an existing user.`,
		},
	}
}
