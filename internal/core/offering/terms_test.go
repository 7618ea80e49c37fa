package offering

import (
	"testing"

	"github.com/crowdlane/offeringd/internal/core/amount"
)

func TestTermsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Terms)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Terms) {}},
		{name: "zero unit price", mutate: func(tm *Terms) { tm.UnitPriceEUR = amount.Zero() }, wantErr: true},
		{name: "zero units per share", mutate: func(tm *Terms) { tm.UnitsPerShare = 0 }, wantErr: true},
		{name: "zero share denominator", mutate: func(tm *Terms) { tm.PlatformShareDenominator = 0 }, wantErr: true},
		{name: "min ticket above max", mutate: func(tm *Terms) { tm.MinTicketEUR = amount.FromUint64(20000) }, wantErr: true},
		{name: "min units above max", mutate: func(tm *Terms) { tm.MinUnits = amount.FromUint64(2000) }, wantErr: true},
		{name: "max units above theoretical", mutate: func(tm *Terms) { tm.MaxTheoreticalUnits = amount.FromUint64(999) }, wantErr: true},
		{name: "whitelist cap above global", mutate: func(tm *Terms) { tm.MaxWhitelistUnits = amount.FromUint64(1001) }, wantErr: true},
		{name: "discount of one", mutate: func(tm *Terms) { tm.WhitelistDiscountFrac = amount.FracDenominator }, wantErr: true},
		{name: "fee above one", mutate: func(tm *Terms) { tm.PlatformFeeFrac = amount.FracDenominator + 1 }, wantErr: true},
		{name: "zero whitelist duration", mutate: func(tm *Terms) { tm.WhitelistDuration = 0 }, wantErr: true},
		{name: "zero lead time", mutate: func(tm *Terms) { tm.MinLeadTime = 0 }, wantErr: true},
		{name: "zero rate expiry", mutate: func(tm *Terms) { tm.RateExpiry = 0 }, wantErr: true},
		{name: "missing issuer", mutate: func(tm *Terms) { tm.Issuer = "" }, wantErr: true},
		{name: "missing platform wallet", mutate: func(tm *Terms) { tm.PlatformWallet = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := testTerms()
			tt.mutate(&terms)
			err := terms.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTermsPricing(t *testing.T) {
	terms := testTerms()
	if got := terms.whitelistPrice(); got.Cmp(amount.FromUint64(9)) != 0 {
		t.Errorf("whitelist price = %s, want 9", got)
	}
	if got := terms.fixedSlotPrice(); got.Cmp(amount.FromUint64(8)) != 0 {
		t.Errorf("fixed slot price = %s, want 8", got)
	}
	if got := terms.minTicketUnits(); got.Cmp(amount.FromUint64(10)) != 0 {
		t.Errorf("min ticket units = %s, want 10", got)
	}
}
