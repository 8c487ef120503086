package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/domainscan/internal/cache"
	"github.com/khanhnv2901/domainscan/internal/dispatch"
	"github.com/khanhnv2901/domainscan/internal/domain"
	"github.com/khanhnv2901/domainscan/internal/enrich"
	"github.com/khanhnv2901/domainscan/internal/executor"
	"github.com/khanhnv2901/domainscan/internal/scanner"
	sharederrors "github.com/khanhnv2901/domainscan/internal/shared/errors"
)

var (
	scanList      string
	suffixFilter  string
	cacheFlag     bool
	metaFlag      bool
	sortFlag      bool
	lambdaFlag    bool
	lambdaProfile string
	lambdaRetries int
	lambdaDetails bool
	workersFlag   int
)

var scanCmd = &cobra.Command{
	Use:   "scan <domains>",
	Short: "Run the selected scanners over a domain list or a single domain",
	Long: `Run every selected scanner over the given domains.

<domains> is either a path to a CSV/plain file with one domain per line, or
a single literal domain. Scanners run sequentially; domains within a scanner
run on a bounded worker pool, locally or as task_<scanner> Lambda
invocations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context(), args[0])
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanList, "scan", "", "comma-separated scanner names (required)")
	scanCmd.Flags().StringVar(&suffixFilter, "suffix", "", "only scan domains ending with this suffix")
	scanCmd.Flags().BoolVar(&cacheFlag, "cache", false, "reuse cached scan results when present")
	scanCmd.Flags().BoolVar(&metaFlag, "meta", true, "append scan metadata columns to each row")
	scanCmd.Flags().BoolVar(&sortFlag, "sort", false, "sort each result table by domain")
	scanCmd.Flags().BoolVar(&lambdaFlag, "lambda", false, "dispatch scans to Lambda by default")
	scanCmd.Flags().StringVar(&lambdaProfile, "lambda-profile", "", "AWS shared config profile for Lambda access")
	scanCmd.Flags().IntVar(&lambdaRetries, "lambda-retries", 0, "max reattempts per remote invocation")
	scanCmd.Flags().BoolVar(&lambdaDetails, "lambda-details", false, "append remote log measurements after the run")
	scanCmd.Flags().IntVar(&workersFlag, "workers", 0, "override every scanner's worker count")
}

func runScan(ctx context.Context, domainsArg string) error {
	if scanList == "" {
		return sharederrors.ErrNoScanners
	}

	var scanners []scanner.Scanner
	needsRemote := lambdaFlag
	needsHeadless := false
	for _, name := range strings.Split(scanList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		sc, err := scanner.Lookup(name)
		if err != nil {
			return fmt.Errorf("%w (known: %s)", err, strings.Join(scanner.Names(), ", "))
		}
		scanners = append(scanners, sc)
		if pref, ok := sc.(scanner.RemotePreference); ok {
			needsRemote = needsRemote || pref.UseLambda()
		}
		if _, ok := sc.(scanner.HeadlessProber); ok {
			needsHeadless = true
		}
	}
	if len(scanners) == 0 {
		return sharederrors.ErrNoScanners
	}

	domains, err := domain.Load(domainsArg, suffixFilter)
	if err != nil {
		return fmt.Errorf("%w: %v", sharederrors.ErrNoDomains, err)
	}

	local := &executor.Local{Log: logger}
	if needsHeadless {
		browser := executor.NewBrowser(60 * time.Second)
		defer browser.Close()
		local.Browser = browser
	}

	deps := dispatch.Deps{
		Log:   logger,
		Local: local,
		Store: &cache.Store{Root: cacheDir},
	}

	if needsRemote {
		profile := lambdaProfile
		if profile == "" {
			profile = viper.GetString("lambda.profile")
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if profile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(profile))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return fmt.Errorf("load AWS configuration: %w", err)
		}
		deps.Remote = &executor.Remote{
			Client:     lambda.NewFromConfig(awsCfg),
			MaxRetries: lambdaRetries,
			Log:        logger,
		}
		if lambdaDetails {
			deps.Enricher = enrich.New(cloudwatchlogs.NewFromConfig(awsCfg), logger)
		}
	}

	controller := &dispatch.Controller{
		Config: dispatch.Config{
			ResultsDir:    resultsDir,
			CacheDir:      cacheDir,
			Cache:         cacheFlag,
			Meta:          metaFlag,
			Sort:          sortFlag,
			Lambda:        lambdaFlag,
			LambdaRetries: lambdaRetries,
			LambdaDetails: lambdaDetails,
			Workers:       workersFlag,
			Options:       scannerOptions(),
			Command:       strings.Join(os.Args, " "),
		},
		Deps: deps,
	}

	if err := controller.Run(ctx, domains, scanners); err != nil {
		fmt.Println(colorError("Scan failed."))
		return err
	}

	fmt.Println(colorSuccess("Scan complete."))
	fmt.Printf("%s %s\n", colorInfo("Results:"), resultsDir)
	fmt.Printf("%s %d domains, %d scanners\n", colorInfo("Covered:"), len(domains), len(scanners))
	return nil
}

// scannerOptions bundles the CLI options scanners and remote invocations
// can see. Everything here crosses the wire, so plain values only.
func scannerOptions() scanner.Options {
	return scanner.Options{
		"cache":   cacheFlag,
		"meta":    metaFlag,
		"suffix":  suffixFilter,
		"lambda":  lambdaFlag,
		"workers": workersFlag,
	}
}
