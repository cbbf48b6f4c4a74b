package doctor

import "errors"

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorAlreadyExists = errors.New("a doctor with this document already exists")
	ErrDuplicateSpeciality = errors.New("a doctor with the same name and speciality already exists")
)
