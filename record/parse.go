package record

import (
	"encoding/json"
	"fmt"
)

// Shadow types with pointer fields so missing keys are distinguishable from
// zero values.
type recordJSON struct {
	OriginalFilename *string       `json:"original_filename"`
	Points           *[]pointJSON  `json:"points"`
	IFSKey           *[]Key        `json:"ifs_key"`
	Metadata         *metadataJSON `json:"metadata"`
}

type pointJSON struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	R *int     `json:"r"`
	G *int     `json:"g"`
	B *int     `json:"b"`
}

type metadataJSON struct {
	Version        *string `json:"version"`
	EncryptionType *string `json:"encryption_type"`
	OriginalSize   *int64  `json:"original_size"`
}

// Parse validates a serialized record and returns its in-memory form.
//
// Parsing is strict and fail-closed: invalid JSON, a missing required key,
// an out-of-range color channel, a negative size, or an unknown
// version/encryption tag all reject the record before any decode is
// attempted.
func Parse(data []byte) (*Record, error) {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, wrapError(KindParse, "RVL-REC-010", "record is not valid JSON", err)
	}

	if raw.OriginalFilename == nil {
		return nil, newError(KindParse, "RVL-REC-011", "missing original_filename")
	}
	if raw.Points == nil {
		return nil, newError(KindParse, "RVL-REC-012", "missing points")
	}
	if raw.IFSKey == nil {
		return nil, newError(KindParse, "RVL-REC-013", "missing ifs_key")
	}
	if len(*raw.IFSKey) == 0 {
		return nil, newError(KindParse, "RVL-REC-014", "ifs_key is empty")
	}
	if raw.Metadata == nil {
		return nil, newError(KindParse, "RVL-REC-015", "missing metadata")
	}

	md := raw.Metadata
	if md.Version == nil {
		return nil, newError(KindParse, "RVL-REC-016", "missing metadata.version")
	}
	if md.EncryptionType == nil {
		return nil, newError(KindParse, "RVL-REC-017", "missing metadata.encryption_type")
	}
	if md.OriginalSize == nil {
		return nil, newError(KindParse, "RVL-REC-018", "missing metadata.original_size")
	}
	if *md.Version != FormatVersion {
		return nil, newError(KindVersion, "RVL-REC-020",
			fmt.Sprintf("unsupported record version %q", *md.Version))
	}
	if *md.EncryptionType != EncryptionType {
		return nil, newError(KindVersion, "RVL-REC-021",
			fmt.Sprintf("unsupported encryption type %q", *md.EncryptionType))
	}
	if *md.OriginalSize < 0 {
		return nil, newError(KindRange, "RVL-REC-022",
			fmt.Sprintf("negative original_size %d", *md.OriginalSize))
	}

	points := make([]Point, len(*raw.Points))
	for i, p := range *raw.Points {
		if p.X == nil || p.Y == nil || p.R == nil || p.G == nil || p.B == nil {
			return nil, newError(KindParse, "RVL-REC-030",
				fmt.Sprintf("point %d is missing a coordinate or channel", i))
		}
		for _, ch := range [...]struct {
			name string
			v    int
		}{{"r", *p.R}, {"g", *p.G}, {"b", *p.B}} {
			if ch.v < 0 || ch.v > 255 {
				return nil, newError(KindRange, "RVL-REC-031",
					fmt.Sprintf("point %d channel %s=%d outside [0,255]", i, ch.name, ch.v))
			}
		}
		points[i] = Point{X: *p.X, Y: *p.Y, R: uint8(*p.R), G: uint8(*p.G), B: uint8(*p.B)}
	}

	return &Record{
		OriginalFilename: *raw.OriginalFilename,
		Points:           points,
		IFSKey:           append([]Key(nil), *raw.IFSKey...),
		Metadata: Metadata{
			Version:        *md.Version,
			EncryptionType: *md.EncryptionType,
			OriginalSize:   *md.OriginalSize,
		},
	}, nil
}
