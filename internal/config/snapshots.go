package config

// SnapshotsConfig controls where daily schedule snapshots are persisted.
type SnapshotsConfig struct {
	Dir           string
	RetentionDays int
}

func loadSnapshots() SnapshotsConfig {
	return SnapshotsConfig{
		Dir:           envOrDefault(envSnapshotDir, defaultSnapshotDir),
		RetentionDays: intEnvOrDefault(envSnapshotRetention, defaultSnapshotRetention),
	}
}
