package model

import (
    "bytes"
    "encoding/json"
    "strconv"
)

// ID is an upstream identifier. The platform answers with numeric ids on
// some endpoints and string ids on others, so both are accepted and the
// value keeps its original form when encoded again.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if len(b) == 0 || bytes.Equal(b, []byte("null")) {
        *id = ""
        return nil
    }
    if b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *id = ID(s)
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        return err
    }
    *id = ID(n.String())
    return nil
}

// MarshalJSON writes purely numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
    if id.numeric() {
        return []byte(id), nil
    }
    return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" }

func (id ID) numeric() bool {
    if id == "" || (len(id) > 1 && id[0] == '0') {
        return false
    }
    _, err := strconv.ParseUint(string(id), 10, 64)
    return err == nil
}
