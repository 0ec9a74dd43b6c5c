package gorm

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&Admin{},
		&Volunteer{},
		&Candidate{},
		&RegistrantDocument{},
		&RegistrationCounter{},
		&TemporaryRegistration{},
		&PaymentRequest{},
		&PaymentApproval{},
		&Course{},
		&JobRole{},
		&Asset{},
		&SentMessage{},
	}
}
