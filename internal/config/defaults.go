package config

const (
	defaultLogDir         = "~/.local/share/gearbox/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultBackupSuffix   = ".backup"
	defaultTimeoutSeconds = 30
	defaultSettleSeconds  = 2
	defaultPollMillis     = 250

	// Staging directory names used by Protato's EasiEdit, created beside the
	// executable. These names are a compatibility contract with the tool.
	stagingInputName  = "To Edit"
	stagingPackedName = "Packed Files"
	stagingWorkName   = "Unpacked Files"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Converter: Converter{
			TimeoutSeconds: defaultTimeoutSeconds,
			SettleSeconds:  defaultSettleSeconds,
			PollMillis:     defaultPollMillis,
		},
		Deploy: Deploy{
			BackupSuffix: defaultBackupSuffix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
