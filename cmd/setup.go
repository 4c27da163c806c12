package cmd

import (
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-task/setup-task/pkg/actions"
	"github.com/go-task/setup-task/pkg/fetch"
	"github.com/go-task/setup-task/pkg/platform"
	"github.com/go-task/setup-task/pkg/release"
	"github.com/go-task/setup-task/pkg/setup"
	"github.com/go-task/setup-task/pkg/toolcache"
	"github.com/go-task/setup-task/pkg/verify"
)

func runSetup(cmd *cobra.Command, args []string) error {
	env := actions.New()

	if err := doSetup(cmd, args, env); err != nil {
		// One error annotation per run; the non-zero exit comes from main.
		env.Error(err.Error())
		return err
	}
	return nil
}

func doSetup(cmd *cobra.Command, args []string, env *actions.Env) error {
	ctx := cmd.Context()

	requested := requestedVersion(env, args)
	token := githubToken(env)

	plat, err := platform.Detect()
	if err != nil {
		return err
	}
	log.Infof("detected platform: %s/%s", plat.OS, plat.Arch)

	cacheRoot, err := toolcache.DefaultRoot()
	if err != nil {
		return err
	}

	// The token authenticates the latest-release lookup only; downloads run
	// unauthenticated through the default client.
	installer := &setup.Installer{
		Platform: plat,
		Registry: release.NewGitHubRegistry(token),
		Cache:    toolcache.NewDirStore(cacheRoot),
		Fetcher:  &setup.HTTPFetcher{Client: fetch.DefaultClient},
	}

	res, err := installer.Run(ctx, requested)
	if err != nil {
		return err
	}

	if err := env.AddPath(res.Dir); err != nil {
		return errors.Wrap(err, "failed to publish PATH")
	}
	log.Infof("added %s to PATH", res.Dir)

	out, err := verify.Run(ctx, res.Dir)
	if err != nil {
		return errors.Wrap(err, "failed to verify installation")
	}
	log.Infof("verified installation: %s", out)

	if err := env.SetOutput("version", res.Version); err != nil {
		return errors.Wrap(err, "failed to set outputs")
	}
	if err := env.SetOutput("cache-hit", strconv.FormatBool(res.CacheHit)); err != nil {
		return errors.Wrap(err, "failed to set outputs")
	}

	return nil
}

// requestedVersion picks the version to install: the positional argument
// wins, then the "version" action input, then "latest".
func requestedVersion(env *actions.Env, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return env.InputOrDefault("version", "latest")
}

// githubToken picks the registry credential: the --github-token flag wins,
// then the "github-token" action input, then the ambient GITHUB_TOKEN.
func githubToken(env *actions.Env) string {
	if tokenFlag != "" {
		return tokenFlag
	}
	if token := env.Input("github-token"); token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}
