package detection

// classDescriptions maps each known label to a short human-readable
// description shown alongside the result.
var classDescriptions = map[string]string{
	"Glioma":     "Glioma tumors arise from glial cells in the brain.",
	"Meningioma": "Meningiomas grow from the meninges, the protective layers of the brain.",
	"Pituitary":  "Pituitary tumors affect the pituitary gland at the base of the brain.",
	"No Tumor":   "No signs of tumor detected in the scan.",
}

// DescriptionFor returns the static description for a label. Unknown labels
// get an empty description, not an error.
func DescriptionFor(label string) string {
	return classDescriptions[label]
}
