package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/cli/config"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
	"github.com/teleskin-lab/teleskin/pkg/usecase"
	"github.com/teleskin-lab/teleskin/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "seed",
		Usage: "Seed the demo roster into an empty repository",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			records := usecase.NewRecordUseCase(repo)
			roster, err := records.ListPatients(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to seed roster")
			}

			bold := color.New(color.Bold)
			bold.Printf("Roster (%d records)\n", len(roster))
			for _, rec := range roster {
				statusColor := color.New(color.FgGreen)
				switch rec.Status {
				case types.PatientStatusCritical:
					statusColor = color.New(color.FgRed, color.Bold)
				case types.PatientStatusStable:
					statusColor = color.New(color.FgYellow)
				}
				fmt.Printf("  %-6s %-20s %-24s %s\n",
					rec.ID, rec.Name, rec.Condition, statusColor.Sprint(rec.Status))
			}

			return nil
		},
	}
}
