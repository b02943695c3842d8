package domain

// Department is one of the municipal directorates a requester works in.
type Department string

// Departments lists the directorates offered on the submission form.
var Departments = []Department{
	"Disaster Affairs Directorate",
	"Information Technology Directorate",
	"Support Services Directorate",
	"Real Estate and Expropriation Directorate",
	"Public Works Directorate",
	"Legal Affairs Directorate",
	"Climate Change and Zero Waste Directorate",
	"Zoning and Urban Planning Directorate",
	"Human Resources and Training Directorate",
	"Fire Department",
	"Culture and Social Affairs Directorate",
	"Machinery Supply and Maintenance Directorate",
	"Financial Services Directorate",
	"Parks and Gardens Directorate",
	"Social Support Services Directorate",
	"Water and Sewerage Directorate",
	"Sanitation Directorate",
	"Veterinary Affairs Directorate",
	"Clerical Affairs Directorate",
	"Municipal Police Directorate",
}

// Valid reports whether d is a known directorate.
func (d Department) Valid() bool {
	for _, candidate := range Departments {
		if candidate == d {
			return true
		}
	}
	return false
}
