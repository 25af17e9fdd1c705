package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/diillson/warehouse-finops-dashboard-go/pkg/version"
)

const banner = `
 __        __             _                                   _____ _        ___
 \ \      / /_ _ _ __ ___| |__   ___  _   _ ___  ___        |  ___(_)_ __  / _ \ _ __  ___
  \ \ /\ / / _' | '__/ _ \ '_ \ / _ \| | | / __|/ _ \       | |_  | | '_ \| | | | '_ \/ __|
   \ V  V / (_| | | |  __/ | | | (_) | |_| \__ \  __/       |  _| | | | | | |_| | |_) \__ \
    \_/\_/ \__,_|_|  \___|_| |_|\___/ \__,_|___/\___|       |_|   |_|_| |_|\___/| .__/|___/
                                                                                |_|
`

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(w io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(w, cyan(banner))
	fmt.Fprintln(w, blue(fmt.Sprintf("Warehouse FinOps Dashboard CLI (v%s)", version.FormatVersion())))
}

// checkLatestVersion avisa quando uma versão mais recente está disponível.
func checkLatestVersion(ctx context.Context, w io.Writer, currentVersion string) {
	latest, isNewer, err := version.LatestVersion(ctx, currentVersion)
	if err != nil || !isNewer {
		return
	}
	pterm.Warning.WithWriter(w).Printfln("A new version of Warehouse FinOps Dashboard is available: %s", latest)
	pterm.Info.WithWriter(w).Println("Please update using: go install github.com/diillson/warehouse-finops-dashboard-go/cmd/warehouse-finops@latest")
}
