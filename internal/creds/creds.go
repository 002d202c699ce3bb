// Package creds resolves static AWS credential triples for a named profile.
//
// Sources are tried in order: environment variables (default profile only),
// the shared credentials file, the config file (direct keys only), and the
// EC2 instance metadata service (default profile only). The file-backed
// sources are re-read on every resolution so external edits take effect
// without a restart; only the metadata source caches, because it is the
// only source with a real expiration.
package creds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/plexarc/sigwire/internal/log"
)

// Credentials is a static access key triple. Immutable once resolved.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NotFoundError reports that no source produced credentials for a profile.
type NotFoundError struct {
	Profile string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no credentials found for profile %q: run 'aws configure' or set AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY", e.Profile)
}

// Resolver resolves credentials for named profiles.
type Resolver struct {
	// Dir overrides the AWS config directory (~/.aws). Used by tests.
	Dir string
	// Env overrides environment lookup. Defaults to os.Getenv.
	Env func(string) string
	// IMDS is the instance metadata client consulted as the last source
	// for the default profile. Defaults to NewIMDSClient().
	IMDS *IMDSClient
}

// NewResolver returns a Resolver using the ambient environment, the
// standard ~/.aws directory and the real metadata endpoint.
func NewResolver() *Resolver {
	return &Resolver{IMDS: NewIMDSClient()}
}

func (r *Resolver) getenv(key string) string {
	if r.Env != nil {
		return r.Env(key)
	}
	return os.Getenv(key)
}

// source is one step of the resolution chain. false means try the next
// source; a source that fails internally also falls through, the chain
// never errors early.
type source func(ctx context.Context, profile string) (Credentials, bool)

// Resolve returns credentials for profile, trying each source in order and
// short-circuiting on the first success. Returns *NotFoundError when every
// source comes up empty.
func (r *Resolver) Resolve(ctx context.Context, profile string) (Credentials, error) {
	sources := []struct {
		name string
		fn   source
	}{
		{"environment", r.fromEnv},
		{"credentials file", r.fromCredentialsFile},
		{"config file", r.fromConfigFile},
		{"instance metadata", r.fromIMDS},
	}

	for _, s := range sources {
		if c, ok := s.fn(ctx, profile); ok {
			log.Debug("loaded credentials", "source", s.name, "profile", profile)
			return c, nil
		}
	}

	return Credentials{}, &NotFoundError{Profile: profile}
}

// fromEnv reads AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY /
// AWS_SESSION_TOKEN. Consulted for the default profile only.
func (r *Resolver) fromEnv(_ context.Context, profile string) (Credentials, bool) {
	if profile != "default" {
		return Credentials{}, false
	}
	accessKey := r.getenv("AWS_ACCESS_KEY_ID")
	secretKey := r.getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return Credentials{}, false
	}
	return Credentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    r.getenv("AWS_SESSION_TOKEN"),
	}, true
}

func (r *Resolver) fromCredentialsFile(_ context.Context, profile string) (Credentials, bool) {
	return r.fromINI(r.credentialsPath(), profile)
}

// fromConfigFile handles the direct-credential case only. Profiles using
// role assumption or identity federation are not resolvable here and fail
// closed to the next source.
func (r *Resolver) fromConfigFile(_ context.Context, profile string) (Credentials, bool) {
	return r.fromINI(r.configPath(), profile)
}

func (r *Resolver) fromINI(path, profile string) (Credentials, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, false
	}

	section, ok := parseINI(string(content))[profile]
	if !ok {
		return Credentials{}, false
	}

	accessKey := section["aws_access_key_id"]
	secretKey := section["aws_secret_access_key"]
	if accessKey == "" || secretKey == "" {
		return Credentials{}, false
	}

	return Credentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		SessionToken:    section["aws_session_token"],
	}, true
}

// fromIMDS queries the instance metadata service. Consulted for the
// default profile only; connection failure just means we're not on EC2.
func (r *Resolver) fromIMDS(ctx context.Context, profile string) (Credentials, bool) {
	if profile != "default" || r.IMDS == nil {
		return Credentials{}, false
	}
	c, err := r.IMDS.Credentials(ctx)
	if err != nil {
		log.Debug("instance metadata unavailable", "error", err)
		return Credentials{}, false
	}
	return c, true
}

// configDir returns the AWS config directory: the parent of
// AWS_CONFIG_FILE if set, otherwise ~/.aws.
func (r *Resolver) configDir() string {
	if r.Dir != "" {
		return r.Dir
	}
	if path := r.getenv("AWS_CONFIG_FILE"); path != "" {
		return filepath.Dir(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".aws")
}

func (r *Resolver) credentialsPath() string {
	return filepath.Join(r.configDir(), "credentials")
}

func (r *Resolver) configPath() string {
	return filepath.Join(r.configDir(), "config")
}

// ProfileRegion returns the region for a profile: AWS_REGION, then
// AWS_DEFAULT_REGION, then the config file's region key. Empty if none.
func (r *Resolver) ProfileRegion(profile string) string {
	if region := r.getenv("AWS_REGION"); region != "" {
		return region
	}
	if region := r.getenv("AWS_DEFAULT_REGION"); region != "" {
		return region
	}

	content, err := os.ReadFile(r.configPath())
	if err != nil {
		return ""
	}
	if section, ok := parseINI(string(content))[profile]; ok {
		return section["region"]
	}
	return ""
}

// Profiles lists profile names from the credentials and config files,
// deduplicated and sorted.
func (r *Resolver) Profiles() []string {
	seen := map[string]bool{}
	var profiles []string

	for _, path := range []string{r.credentialsPath(), r.configPath()} {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for name := range parseINI(string(content)) {
			if !seen[name] {
				seen[name] = true
				profiles = append(profiles, name)
			}
		}
	}

	sort.Strings(profiles)
	return profiles
}
