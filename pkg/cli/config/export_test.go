package config

// NewClinicForTest creates a Clinic config for testing purposes
func NewClinicForTest(path string) *Clinic {
	return &Clinic{
		path: path,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, filePath string) *Repository {
	return &Repository{
		backend:  backend,
		filePath: filePath,
	}
}
