package fixture

// Security zones a record may be placed in
var SecurityZones = []string{"DMZ", "Internal", "External", "Management", "Production", "Development"}

// Statuses a non-host record may report
var Statuses = []string{"Active", "Inactive", "Maintenance", "Error", "Pending"}

// Record is the flat representation of one generated node
type Record struct {
	ObjectID          string   `json:"object_id" yaml:"object_id"`
	SecZone           string   `json:"sec_zone" yaml:"sec_zone"`
	ConfigID          string   `json:"config_id" yaml:"config_id"`
	ParentID          *string  `json:"parent_id" yaml:"parent_id"`
	IPAddress         string   `json:"ip_address" yaml:"ip_address"`
	Kind              Kind     `json:"object_type" yaml:"object_type"`
	Status            string   `json:"status" yaml:"status"`
	PercentUtilized   float64  `json:"percent_utilized" yaml:"percent_utilized"`
	ImmediateChildren []string `json:"immediate_children" yaml:"immediate_children"`
}

// IsRoot reports whether the record has no parent
func (r *Record) IsRoot() bool {
	return r.ParentID == nil
}

// Parent returns the parent id, or "" for roots
func (r *Record) Parent() string {
	if r.ParentID == nil {
		return ""
	}
	return *r.ParentID
}
