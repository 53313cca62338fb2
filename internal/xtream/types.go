package xtream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/voyagen/popcornplayer/internal/models"
)

// StreamType selects one of the panel's catalogs.
type StreamType string

const (
	Live   StreamType = "live"
	VOD    StreamType = "vod"
	Series StreamType = "series"
)

// StreamTypes lists the catalogs in import order.
var StreamTypes = []StreamType{Live, VOD, Series}

// ParseStreamType accepts "live", "vod" (or "movie") and "series".
func ParseStreamType(s string) (StreamType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "":
		return Live, nil
	case "vod", "movie", "movies":
		return VOD, nil
	case "series":
		return Series, nil
	}
	return "", fmt.Errorf("unknown stream type %q", s)
}

// Label is the default category and playlist suffix for the type.
func (t StreamType) Label() string {
	switch t {
	case VOD:
		return "Movies"
	case Series:
		return "Series"
	default:
		return "Live TV"
	}
}

// MediaType maps the type onto models media types.
func (t StreamType) MediaType() int16 {
	switch t {
	case VOD:
		return models.MediaTypeMovie
	case Series:
		return models.MediaTypeSerie
	default:
		return models.MediaTypeLivestream
	}
}

// StreamTypeForMedia is the inverse of MediaType.
func StreamTypeForMedia(mediaType int16) StreamType {
	switch mediaType {
	case models.MediaTypeMovie:
		return VOD
	case models.MediaTypeSerie:
		return Series
	default:
		return Live
	}
}

// FlexInt decodes numbers that panels send either as JSON numbers or as strings.
// Empty strings, null and non-numeric strings decode to 0.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}
	if bytes.Equal(b, []byte("true")) {
		*f = 1
		return nil
	}
	if bytes.Equal(b, []byte("false")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("FlexInt: %w", err)
	}
	*f = FlexInt(n)
	return nil
}

// FlexString decodes strings that panels sometimes send as numbers.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(b)
	return nil
}

// UserInfo is the get_account_info response.
type UserInfo struct {
	UserInfo   Account    `json:"user_info"`
	ServerInfo ServerInfo `json:"server_info"`
}

// Account is the user_info block. The echoed password is not decoded.
type Account struct {
	Username             FlexString `json:"username"`
	Message              string     `json:"message"`
	Auth                 FlexInt    `json:"auth"`
	Status               string     `json:"status"`
	ExpDate              FlexString `json:"exp_date"`
	IsTrial              FlexString `json:"is_trial"`
	ActiveCons           FlexString `json:"active_cons"`
	CreatedAt            FlexString `json:"created_at"`
	MaxConnections       FlexString `json:"max_connections"`
	AllowedOutputFormats []string   `json:"allowed_output_formats"`
}

// ServerInfo is the server_info block.
type ServerInfo struct {
	URL            string     `json:"url"`
	Port           FlexString `json:"port"`
	HTTPSPort      FlexString `json:"https_port"`
	ServerProtocol string     `json:"server_protocol"`
	RTMPPort       FlexString `json:"rtmp_port"`
	Timezone       string     `json:"timezone"`
	TimestampNow   FlexInt    `json:"timestamp_now"`
	TimeNow        string     `json:"time_now"`
}

// Category is one entry of a get_*_categories response.
type Category struct {
	CategoryID   FlexString `json:"category_id"`
	CategoryName string     `json:"category_name"`
	ParentID     FlexInt    `json:"parent_id"`
}

// Stream is one entry of a get_live_streams, get_vod_streams or get_series
// response. Bookkeeping fields are passed through untouched.
type Stream struct {
	Num                FlexInt    `json:"num"`
	Name               string     `json:"name"`
	StreamType         string     `json:"stream_type,omitempty"`
	StreamID           FlexInt    `json:"stream_id"`
	SeriesID           FlexInt    `json:"series_id,omitempty"`
	StreamIcon         string     `json:"stream_icon,omitempty"`
	Cover              string     `json:"cover,omitempty"`
	EPGChannelID       FlexString `json:"epg_channel_id,omitempty"`
	Added              FlexString `json:"added,omitempty"`
	CategoryID         FlexString `json:"category_id"`
	CustomSID          FlexString `json:"custom_sid,omitempty"`
	TVArchive          FlexInt    `json:"tv_archive,omitempty"`
	DirectSource       string     `json:"direct_source,omitempty"`
	TVArchiveDuration  FlexInt    `json:"tv_archive_duration,omitempty"`
	ContainerExtension string     `json:"container_extension,omitempty"`
}

// ID is stream_id, or series_id for series listings that omit stream_id.
func (s Stream) ID() int64 {
	if s.StreamID != 0 {
		return int64(s.StreamID)
	}
	return int64(s.SeriesID)
}

// Icon is stream_icon, or cover for series listings.
func (s Stream) Icon() string {
	if s.StreamIcon != "" {
		return s.StreamIcon
	}
	return s.Cover
}

// DisplayName is the trimmed name on a single line, or "Stream <id>" when empty.
func (s Stream) DisplayName() string {
	name := strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s.Name))
	if name == "" {
		return fmt.Sprintf("Stream %d", s.ID())
	}
	return name
}
