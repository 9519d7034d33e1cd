package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/ledgers"
)

// BalanceSheetAccount summarises a ledger under assets, liabilities, or equity.
type BalanceSheetAccount struct {
	Name    string          `json:"name"`
	Group   string          `json:"group"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection contains the ledgers and total for a classification.
type BalanceSheetSection struct {
	Label    string                `json:"label"`
	Accounts []BalanceSheetAccount `json:"accounts"`
	Total    decimal.Decimal       `json:"total"`
}

// BalanceSheet is the structured response for the balance sheet report.
type BalanceSheet struct {
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
}

// Tally primary group names mapped to balance sheet classifications.
var groupClasses = map[string]string{
	"fixed assets":            "asset",
	"current assets":          "asset",
	"cash-in-hand":            "asset",
	"bank accounts":           "asset",
	"sundry debtors":          "asset",
	"stock-in-hand":           "asset",
	"deposits (asset)":        "asset",
	"loans & advances (asset)": "asset",
	"investments":             "asset",
	"current liabilities":     "liability",
	"sundry creditors":        "liability",
	"duties & taxes":          "liability",
	"loans (liability)":       "liability",
	"bank od a/c":             "liability",
	"secured loans":           "liability",
	"unsecured loans":         "liability",
	"provisions":              "liability",
	"capital account":         "equity",
	"reserves & surplus":      "equity",
}

// BuildBalanceSheet groups ledger closing balances into assets, liabilities,
// and equity sections based on their Tally parent group. Ledgers under
// revenue or unknown groups are skipped.
func BuildBalanceSheet(items []ledgers.Ledger) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets", Accounts: []BalanceSheetAccount{}, Total: decimal.Zero}
	liabilities := BalanceSheetSection{Label: "Liabilities", Accounts: []BalanceSheetAccount{}, Total: decimal.Zero}
	equity := BalanceSheetSection{Label: "Equity", Accounts: []BalanceSheetAccount{}, Total: decimal.Zero}

	for _, l := range items {
		class, ok := groupClasses[strings.ToLower(strings.TrimSpace(l.Parent))]
		if !ok {
			continue
		}
		// Tally reports credit balances as negative; liabilities and equity
		// read naturally when negated.
		row := BalanceSheetAccount{Name: l.Name, Group: l.Parent, Balance: l.ClosingBalance}
		switch class {
		case "asset":
			assets.Accounts = append(assets.Accounts, row)
			assets.Total = assets.Total.Add(row.Balance)
		case "liability":
			row.Balance = row.Balance.Neg()
			liabilities.Accounts = append(liabilities.Accounts, row)
			liabilities.Total = liabilities.Total.Add(row.Balance)
		case "equity":
			row.Balance = row.Balance.Neg()
			equity.Accounts = append(equity.Accounts, row)
			equity.Total = equity.Total.Add(row.Balance)
		}
	}

	for _, section := range []*BalanceSheetSection{&assets, &liabilities, &equity} {
		sort.Slice(section.Accounts, func(i, j int) bool {
			return section.Accounts[i].Name < section.Accounts[j].Name
		})
	}

	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		TotalLiabilitiesAndEquity: liabilities.Total.Add(equity.Total),
	}
}
