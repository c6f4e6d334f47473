package protocol

import (
	"encoding/json"
	"fmt"
)

// Version of the admin wire protocol.
const Version = "1.0"

// Message types. Requests name the operation; every reply is a RESULT.
const (
	TypeProfileList   = "PROFILE_LIST"
	TypeProfileCreate = "PROFILE_CREATE"
	TypeProfileDelete = "PROFILE_DELETE"
	TypeSaveAll       = "SAVE_ALL"
	TypeLoadAll       = "LOAD_ALL"
	TypeDeleteAll     = "DELETE_ALL"
	TypeArchive       = "ARCHIVE"
	TypeResult        = "RESULT"
)

type BaseMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

func DecodeBase(b []byte) (BaseMsg, error) {
	var m BaseMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return m, err
	}
	if m.Type == "" {
		return m, fmt.Errorf("missing type")
	}
	return m, nil
}

// RequestMsg is a profile lifecycle request. Fields beyond ProfileID apply
// only to the operations that use them.
type RequestMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`

	ProfileID string `json:"profile_id,omitempty"`
	WorldName string `json:"world_name,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
}

// ResultMsg answers one request.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`

	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	ProfileID  string        `json:"profile_id,omitempty"`
	ArchiveDir string        `json:"archive_dir,omitempty"`
	Profiles   []ProfileInfo `json:"profiles,omitempty"`
}

type ProfileInfo struct {
	ID        string `json:"id"`
	LastSaved string `json:"last_saved,omitempty"`
}
