package blob

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/interfaces"
	"github.com/teleskin-lab/teleskin/pkg/domain/model"
	"github.com/teleskin-lab/teleskin/pkg/domain/model/auth"
)

// document is the single persisted JSON document. There is no versioning or
// migration: a schema change requires a fresh seed.
type document struct {
	Patients []*model.PatientRecord        `json:"patients"`
	Tokens   map[auth.TokenID]*auth.Token  `json:"tokens"`
}

func emptyDocument() *document {
	return &document{
		Patients: []*model.PatientRecord{},
		Tokens:   make(map[auth.TokenID]*auth.Token),
	}
}

// Repository persists the whole state as one JSON document behind a Port.
// Every mutation reads the full document, mutates it in memory and rewrites
// it. There is no partial update and no cross-process writer protection: the
// store assumes exactly one writer.
type Repository struct {
	mu       sync.Mutex
	port     Port
	patients *patientRepository
}

var _ interfaces.Repository = &Repository{}

// New creates a blob repository over the given port
func New(port Port) *Repository {
	r := &Repository{port: port}
	r.patients = &patientRepository{repo: r}
	return r
}

func (r *Repository) Patient() interfaces.PatientRepository {
	return r.patients
}

func (r *Repository) Close() error {
	return nil
}

// load reads and decodes the full document, returning an empty one when the
// port has no document yet.
func (r *Repository) load(ctx context.Context) (*document, error) {
	data, err := r.port.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrNoDocument) {
			return emptyDocument(), nil
		}
		return nil, goerr.Wrap(err, "failed to read document")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document")
	}
	if doc.Patients == nil {
		doc.Patients = []*model.PatientRecord{}
	}
	if doc.Tokens == nil {
		doc.Tokens = make(map[auth.TokenID]*auth.Token)
	}
	return &doc, nil
}

// store encodes and rewrites the full document
func (r *Repository) store(ctx context.Context, doc *document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return goerr.Wrap(err, "failed to encode document")
	}
	if err := r.port.Write(ctx, data); err != nil {
		return goerr.Wrap(err, "failed to write document")
	}
	return nil
}

func (r *Repository) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	copied := *token
	doc.Tokens[token.ID] = &copied
	return r.store(ctx, doc)
}

func (r *Repository) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	token, ok := doc.Tokens[tokenID]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "token not found", goerr.V("tokenID", tokenID))
	}
	copied := *token
	return &copied, nil
}

func (r *Repository) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := doc.Tokens[tokenID]; !ok {
		return goerr.Wrap(model.ErrNotFound, "token not found", goerr.V("tokenID", tokenID))
	}
	delete(doc.Tokens, tokenID)
	return r.store(ctx, doc)
}
