package config

const (
	// CircuitVersion is the version tag of the bundled nullification circuit
	// artifacts.
	CircuitVersion = "dev"

	// Remote artifacts of the nullification circuit. The hashes pin the
	// exact content; downloads failing the hash check are rejected. The
	// values below are placeholders until a ceremony output is published;
	// until then only locally generated setups (nullcore-setup
	// -action=generate) can be used.
	NullificationCircuitURL          = "https://circuits.ams3.cdn.digitaloceanspaces.com/nullcore/dev/nullification.ccs"
	NullificationCircuitHash         = "8f0caf1b9a2d0c3f5b0e6f4f6a9d7a1e2c4b8d0f3a5c7e9b1d3f5a7c9e0b2d4f"
	NullificationProvingKeyURL       = "https://circuits.ams3.cdn.digitaloceanspaces.com/nullcore/dev/nullification.pk"
	NullificationProvingKeyHash      = "1a3c5e7f9b0d2f4a6c8e0b1d3f5a7c9e2b4d6f8a0c1e3b5d7f9a0c2e4b6d8f1a"
	NullificationVerificationKeyURL  = "https://circuits.ams3.cdn.digitaloceanspaces.com/nullcore/dev/nullification.vk"
	NullificationVerificationKeyHash = "2b4d6f8a0c1e3b5d7f9a0c2e4b6d8f1a3c5e7f9b0d2f4a6c8e0b1d3f5a7c9e2b"
)

const (
	// DefaultDatabaseType is the key-value store driver used by the
	// commands.
	DefaultDatabaseType = "pebble"
	// DefaultDataDir is the directory, under the user home, where the
	// commands keep their database.
	DefaultDataDir = ".nullcore"
	// DefaultDlogBound caps the per-voter nullification count the tally can
	// resolve exactly.
	DefaultDlogBound = 1024
)
