package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crowdlane/offeringd/internal/config"
)

// termsCmd validates the configuration and prints the effective
// offering terms without starting the daemon.
var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Validate configuration and print the offering terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		t, err := cfg.Terms()
		if err != nil {
			return err
		}

		fmt.Printf("Unit price (EUR):        %s\n", t.UnitPriceEUR)
		fmt.Printf("Ticket size (EUR):       %s .. %s\n", t.MinTicketEUR, t.MaxTicketEUR)
		fmt.Printf("Investment ceiling:      %s\n", t.MaxInvestmentEUR)
		fmt.Printf("Units:                   %s .. %s (whitelist cap %s, theoretical max %s)\n",
			t.MinUnits, t.MaxUnits, t.MaxWhitelistUnits, t.MaxTheoreticalUnits)
		fmt.Printf("Units per share:         %d (nominal %s EUR)\n", t.UnitsPerShare, t.ShareNominalEUR)
		fmt.Printf("Phase durations:         whitelist %s, public %s, claim %s\n",
			t.WhitelistDuration, t.PublicDuration, t.ClaimDuration)
		fmt.Printf("Minimum lead time:       %s\n", t.MinLeadTime)
		fmt.Printf("Rate expiry:             %s\n", t.RateExpiry)
		fmt.Printf("Issuer:                  %s\n", t.Issuer)
		fmt.Printf("Nominee:                 %s\n", t.Nominee)
		fmt.Println("Configuration OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(termsCmd)
}
