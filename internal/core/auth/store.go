// internal/core/auth/store.go
package auth

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreStore lê as contas da coleção users do Firestore, um
// documento por conta.
type FirestoreStore struct {
	db *firestore.Client
}

func NewFirestoreStore(db *firestore.Client) *FirestoreStore {
	return &FirestoreStore{db: db}
}

func (s *FirestoreStore) BuscarUsuario(ctx context.Context, username string) (*Usuario, error) {
	query := s.db.Collection("users").Where("username", "==", username).Limit(1).Documents(ctx)
	defer query.Stop()

	doc, err := query.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		log.Printf("Erro detalhado do Firestore: %v", err)
		return nil, err
	}

	var usuario Usuario
	if err := doc.DataTo(&usuario); err != nil {
		return nil, err
	}

	return &usuario, nil
}

// ConfigStore serve a conta administrativa única definida no arquivo de
// configuração, para instalações na intranet sem Firestore.
type ConfigStore struct {
	usuario Usuario
}

func NewConfigStore(username, passwordHash string) *ConfigStore {
	return &ConfigStore{usuario: Usuario{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        []string{"admin"},
	}}
}

func (s *ConfigStore) BuscarUsuario(ctx context.Context, username string) (*Usuario, error) {
	if s.usuario.Username == "" || username != s.usuario.Username {
		return nil, nil
	}
	usuario := s.usuario
	return &usuario, nil
}
