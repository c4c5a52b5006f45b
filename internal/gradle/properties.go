package gradle

import (
	"fmt"
	"os"
	"strings"

	"github.com/gradlemend/gradlemend/internal/patch"
)

// PropertiesFile is the conventional name of the Gradle properties file.
const PropertiesFile = "gradle.properties"

// BuildScriptFile is the conventional name of the Gradle build script.
const BuildScriptFile = "build.gradle"

// SetProperty updates or adds a key=value entry in a properties file.
// The file is line oriented, one property per line; the last write wins
// on duplicate keys, so every existing line for the key is rewritten and
// a missing key is appended. A missing file is created.
func SetProperty(path, name, value string) error {
	entry := name + "=" + value

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return patch.WriteAtomic(path, []byte(entry+"\n"), 0644)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	updated := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), name+"=") {
			lines[i] = entry
			updated = true
		}
	}

	out := strings.Join(lines, "\n")
	if !updated {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += entry + "\n"
	}

	return patch.WriteAtomic(path, []byte(out), 0644)
}

// ReadConfigFile returns the content of a configuration file, or an
// empty string when the file does not exist. Used to gather current
// contents for the oracle prompt.
func ReadConfigFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
