package postgres

import (
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/models"
	"github.com/SAP-F-2025/ielts-trainer/internal/repositories"
	"gorm.io/gorm"
)

type Options struct {
	// UseQuestionRPC routes random selection through get_random_questions.
	UseQuestionRPC bool
}

type repository struct {
	question  repositories.QuestionRepository
	history   repositories.HistoryRepository
	favorites repositories.CollectionRepository
	wrongBook repositories.CollectionRepository
	profile   repositories.ProfileRepository
}

func NewRepository(db *gorm.DB, opts Options) repositories.Repository {
	return &repository{
		question:  NewQuestionPostgreSQL(db, opts.UseQuestionRPC),
		history:   NewHistoryPostgreSQL(db),
		favorites: NewFavoritesPostgreSQL(db),
		wrongBook: NewWrongBookPostgreSQL(db),
		profile:   NewProfilePostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository    { return r.question }
func (r *repository) History() repositories.HistoryRepository      { return r.history }
func (r *repository) Favorites() repositories.CollectionRepository { return r.favorites }
func (r *repository) WrongBook() repositories.CollectionRepository { return r.wrongBook }
func (r *repository) Profile() repositories.ProfileRepository      { return r.profile }

func (r *repository) Collection(kind models.CollectionKind) (repositories.CollectionRepository, error) {
	switch kind {
	case models.CollectionFavorites:
		return r.favorites, nil
	case models.CollectionWrongBook:
		return r.wrongBook, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", kind)
	}
}
