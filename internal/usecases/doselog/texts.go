package doselog

import "fmt"

const (
	NoDosesSelf        = "You have not yet logged any doses!"
	NoSuchID           = "That ID does not exist! Use `/log view` to see valid dose IDs."
	LogChanged         = "Your log changed while removing that dose. Check `/log view` and try again."
	ExportUnavailable  = "Log export is not available right now."
	ExportReady        = "Your dose log export is ready."
	NewDoseLoggedTitle = "New Dose Logged"
)

func FormatNoDosesOther(mention string) string {
	return fmt.Sprintf("The user %s has not yet logged any doses!", mention)
}

func FormatNoDosesYear(year string) string {
	return fmt.Sprintf("The year **%s** does not yet have any logged doses!", year)
}

func FormatDoseRemoved(id int) string {
	return fmt.Sprintf("Dose #%d Removed", id)
}

func FormatResetAll(mention string) string {
	return fmt.Sprintf("🗑 %s has reset their entire dose log!", mention)
}

func FormatResetYear(mention, year string) string {
	return fmt.Sprintf("🗑 %s has reset their dose log for the year %s.", mention, year)
}
