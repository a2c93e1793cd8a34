package models

// FolderGroup collects the folders of one model prefix.
type FolderGroup struct {
	ModelPrefix  string          `json:"model_prefix"`
	Manufacturer *string         `json:"manufacturer"`
	Folders      []FolderSummary `json:"folders"`
}

// FolderSummary describes one model_prefix + folder_name bucket.
type FolderSummary struct {
	FolderName string   `json:"folder_name"`
	Count      int      `json:"count"`
	Models     []string `json:"models"`
	AmbientF   *int     `json:"ambient_f"`
	EwtC       *float64 `json:"ewt_c"`
	LwtC       *float64 `json:"lwt_c"`
}

// RenameFolderRequest renames every record of a prefix in one folder.
type RenameFolderRequest struct {
	ModelPrefix string `json:"model_prefix"`
	OldName     string `json:"old_name"`
	NewName     string `json:"new_name"`
}
