package sizing

import (
	"errors"
	"fmt"
	"io"
)

// InvalidConfigurationMessage is shown in place of a report for the sentinel.
const InvalidConfigurationMessage = "Invalid configuration. Increase number of nodes or drives."

// Render writes the output display for a valid report.
func Render(w io.Writer, r Report) error {
	lines := []string{
		fmt.Sprintf("Total Drives: %d", r.TotalDrives),
		fmt.Sprintf("Erasure Coding Scheme: %d data + %d parity (%s)", r.DataShards, r.ParityShards, r.Scheme),
		fmt.Sprintf("Storage Used (without replication): %.2f MB", r.StorageUsedMB),
	}
	if r.ReplicationEnabled {
		lines = append(lines, fmt.Sprintf("Storage Used (with replication factor %d): %.2f MB",
			r.ReplicationFactor, r.ReplicatedStorageMB))
	} else {
		lines = append(lines, "Replication is disabled")
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// ErrorMessage maps a Calculate error to the text shown to the user.
func ErrorMessage(err error) string {
	if errors.Is(err, ErrInvalidConfiguration) {
		return InvalidConfigurationMessage
	}
	return err.Error()
}
