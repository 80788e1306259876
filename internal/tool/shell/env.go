package shell

import (
	"bytes"
	"maps"
	"slices"

	"github.com/joho/godotenv"
)

// envFileLimit bounds the size of a single env file.
const envFileLimit = 1 << 20

// LoadEnvFiles parses the given .env files in order; later files win.
// Paths must already be resolved by the policy.
func LoadEnvFiles(fs envFileReader, paths []string) (map[string]string, error) {
	env := make(map[string]string)
	for _, path := range paths {
		content, err := fs.ReadFile(path, envFileLimit)
		if err != nil {
			return nil, &EnvFileReadError{Path: path, Cause: err}
		}
		vars, err := godotenv.Parse(bytes.NewReader(content))
		if err != nil {
			return nil, &EnvFileParseError{Path: path, Cause: err}
		}
		maps.Copy(env, vars)
	}
	return env, nil
}

// mergeEnv appends vars to base in key order so that they take precedence.
func mergeEnv(base []string, vars map[string]string) []string {
	env := slices.Clone(base)
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		env = append(env, k+"="+vars[k])
	}
	return env
}
