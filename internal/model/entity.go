package model

// NamedItem is the shape shared by every reference entity the backend owns:
// clients, defects, lines, machines, processes, materials, shifts, scrap
// types and containment actions.
type NamedItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Condition is a defect condition; it belongs to exactly one defect.
type Condition struct {
	ID       int    `json:"id"`
	IDDefect int    `json:"idDefects"`
	Name     string `json:"name"`
}

// Rejection is a rejection record as the backend lists it: reference
// entities already resolved to their display names.
type Rejection struct {
	ID               int    `json:"id"`
	Inspector        string `json:"insepector"`
	PartNumber       string `json:"partNumber"`
	NumberOfPieces   int    `json:"numberOfPieces"`
	OperatorPayroll  int    `json:"operatorPayroll"`
	Description      string `json:"description"`
	Image            string `json:"image"`
	RegistrationDate string `json:"registrationDate"`
	Client           string `json:"clients"`
	Defect           string `json:"defects"`
	Line             string `json:"lines"`
	Condition        string `json:"condition"`
	Action           string `json:"action"`
	Folio            int    `json:"folio"`
}

// Scrap is a scrap record as listed by the backend.
type Scrap struct {
	ID            int    `json:"id"`
	Shift         string `json:"shift"`
	Line          string `json:"line"`
	Process       string `json:"process"`
	Machine       string `json:"machine"`
	Material      string `json:"material"`
	TypeScrap     string `json:"typeScrap"`
	Defect        string `json:"defect"`
	PayrollNumber string `json:"payRollNumber"`
	Alloy         string `json:"alloy"`
	Diameter      string `json:"diameter"`
	Wall          string `json:"wall"`
	RDM           string `json:"rdm"`
	Weight        string `json:"weight"`
}

// ScrapRecord is the JSON payload for scrap creation.
type ScrapRecord struct {
	ShiftID       int    `json:"shiftId"`
	LineID        int    `json:"lineId"`
	ProcessID     int    `json:"processId"`
	MachineID     int    `json:"machineId"`
	MaterialID    int    `json:"materialId"`
	TypeScrapID   int    `json:"typeScrapId"`
	DefectID      int    `json:"defectId"`
	PayrollNumber string `json:"payRollNumber"`
	Alloy         string `json:"alloy"`
	Diameter      string `json:"diameter"`
	Wall          string `json:"wall"`
	RDM           string `json:"rdm"`
	Weight        string `json:"weight"`
}

// MutationResult is the backend's generic acknowledgement for create,
// update and delete operations.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}
