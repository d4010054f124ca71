package client

// CheckDefinition is one check as served by the config-server for this host.
// Immutable once received; a fresh set is fetched on every run.
type CheckDefinition struct {
	Name        string
	ScriptBody  []byte
	ContentHash string
	Config      *Value
}

// checkPayload is the wire shape of a single check in the fetch response.
type checkPayload struct {
	Name          string `json:"name"`
	ScriptContent string `json:"script_content"`
	ScriptHash    string `json:"script_hash"`
	Config        *Value `json:"config"`
}
