// internal/core/auth/service.go
package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrCredenciaisInvalidas cobre usuário inexistente e senha errada com
// a mesma mensagem, para o login não revelar quais contas existem.
var ErrCredenciaisInvalidas = errors.New("usuário ou senha inválidos")

// Usuario é uma conta que pode disparar as ações administrativas do
// painel, como a atualização forçada dos dados.
type Usuario struct {
	Username     string   `firestore:"username"`
	PasswordHash string   `firestore:"passwordHash"`
	Roles        []string `firestore:"roles"` // Array de permissões
}

// UserStore localiza contas pelo nome. Devolve nulo sem erro quando a
// conta não existe.
type UserStore interface {
	BuscarUsuario(ctx context.Context, username string) (*Usuario, error)
}

type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type service struct {
	store     UserStore
	jwtSecret []byte
}

// NewService cria o serviço de autenticação. Com o segredo vazio, vale
// a variável de ambiente JWT_SECRET.
func NewService(store UserStore, jwtSecret []byte) Service {
	if len(jwtSecret) == 0 {
		jwtSecret = []byte(os.Getenv("JWT_SECRET"))
	}
	return &service{store: store, jwtSecret: jwtSecret}
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	// 1. Encontrar o usuário na base configurada.
	usuario, err := s.store.BuscarUsuario(ctx, username)
	if err != nil {
		return "", errors.New("erro ao consultar o banco de dados")
	}
	if usuario == nil {
		return "", ErrCredenciaisInvalidas
	}

	// 2. Comparar a senha fornecida com o hash armazenado.
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(password)); err != nil {
		return "", ErrCredenciaisInvalidas
	}

	// 3. Gerar o Token JWT com as permissões (roles).
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": usuario.Username,
		"roles":    usuario.Roles,                         // Adiciona as permissões ao token
		"exp":      time.Now().Add(time.Hour * 24).Unix(), // Token expira em 24 horas
	})

	tokenString, err := claims.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.New("erro ao gerar token de acesso")
	}

	return tokenString, nil
}
