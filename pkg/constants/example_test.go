package constants_test

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/fcupdater/pkg/constants"
)

// Example demonstrates building the automatic output name.
func Example() {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).Format(constants.DateLayout)
	stem := strings.TrimSuffix(constants.DefaultMasterPath, ".xlsx")

	fmt.Println(stem + constants.UpdatedInfix + date + constants.OutputExtension)
	fmt.Println(stem + constants.BackupInfix + date + constants.OutputExtension)
	// Output:
	// fuel_cost_chungcheong_updated_2026-03-09.xlsx
	// fuel_cost_chungcheong_backup_2026-03-09.xlsx
}

// Example_limits shows the header scan bounds.
func Example_limits() {
	fmt.Printf("source rows: %d (max %d)\n", constants.DefaultSourceHeaderScanRows, constants.MaxSourceHeaderScanRows)
	fmt.Printf("master rows: %d (max %d)\n", constants.DefaultMasterHeaderScanRows, constants.MaxMasterHeaderScanRows)
	// Output:
	// source rows: 200 (max 10000)
	// master rows: 200 (max 20000)
}
