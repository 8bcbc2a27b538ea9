/*
File Name:  Config.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner
*/

package cirrolus

import (
	_ "embed" // Required for embedding the default config file
	"io"
	"io/ioutil"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current core library version.
const Version = "0.1"

// Config is the node's YAML-backed configuration.
type Config struct {
	LogFile string `yaml:"LogFile"` // Log file; empty disables file logging.

	Listen string `yaml:"Listen"` // IP:Port to listen on, e.g. "0.0.0.0:50666".

	Username string `yaml:"Username"` // Default uploader/searcher identity.

	DataDirectory     string `yaml:"DataDirectory"`     // Root of the fragment store (see store.FragmentStore).
	KnownPeersFile    string `yaml:"KnownPeersFile"`    // Pogreb database for peer reattachment.
	DownloadDirectory string `yaml:"DownloadDirectory"` // Where completed downloads are written.

	LivenessInterval int `yaml:"LivenessInterval"` // Seconds between liveness sweeps. Default 60.

	// Initial peer seed list, each as "IP:Port".
	SeedList []string `yaml:"SeedList"`
}

//go:embed "Config Default.yaml"
var defaultConfig []byte

// LoadConfig reads the YAML configuration file into out. If the file does
// not exist or is empty, the embedded default document is used instead.
// The returned status is one of ExitSuccess/ExitErrorConfigAccess/
// ExitErrorConfigRead/ExitErrorConfigParse.
func LoadConfig(filename string, out *Config) (status int, err error) {
	var configData []byte

	stats, statErr := os.Stat(filename)
	switch {
	case statErr != nil && os.IsNotExist(statErr):
		configData = defaultConfig
	case statErr != nil:
		return ExitErrorConfigAccess, statErr
	case stats.Size() == 0:
		configData = defaultConfig
	default:
		if configData, err = ioutil.ReadFile(filename); err != nil {
			return ExitErrorConfigRead, err
		}
	}

	if err = yaml.Unmarshal(configData, out); err != nil {
		return ExitErrorConfigParse, err
	}

	return ExitSuccess, nil
}

// SaveConfig writes cfg back to filename as YAML.
func SaveConfig(filename string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, data, 0644)
}

// initLog redirects subsequent log messages into the file specified in the
// configuration (or stderr if LogFile is blank), and always fans every log
// line into node.Stdout so API subscribers (see webapi's /log/ws) observe
// the same output.
func (node *Node) initLog() error {
	output := io.Writer(os.Stderr)

	if node.Config.LogFile != "" {
		logFile, err := os.OpenFile(node.Config.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		output = logFile
	}

	log.SetOutput(io.MultiWriter(output, node.Stdout))
	log.Printf("---- Cirrolus node %s ----\n", Version)

	return nil
}
