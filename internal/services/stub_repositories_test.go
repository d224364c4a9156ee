package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/foalwatch/internal/models"
)

type stubHorseRepo struct {
	horses    map[uint]models.Horse
	nextID    uint
	createErr error
}

func newStubHorseRepo(horses ...models.Horse) *stubHorseRepo {
	repo := &stubHorseRepo{horses: make(map[uint]models.Horse), nextID: 1}
	for _, horse := range horses {
		repo.horses[horse.ID] = horse
		if horse.ID >= repo.nextID {
			repo.nextID = horse.ID + 1
		}
	}
	return repo
}

func (stub *stubHorseRepo) ListByUser(userID uint, sex string) ([]models.Horse, error) {
	result := make([]models.Horse, 0, len(stub.horses))
	for _, horse := range stub.horses {
		if horse.UserID != userID {
			continue
		}
		if sex != "" && horse.Sex != sex {
			continue
		}
		result = append(result, horse)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

func (stub *stubHorseRepo) FindByIDForUser(horseID uint, userID uint) (models.Horse, bool, error) {
	horse, ok := stub.horses[horseID]
	if !ok || horse.UserID != userID {
		return models.Horse{}, false, nil
	}
	return horse, true, nil
}

func (stub *stubHorseRepo) Create(horse *models.Horse) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	horse.ID = stub.nextID
	stub.nextID++
	stub.horses[horse.ID] = *horse
	return nil
}

func (stub *stubHorseRepo) Save(horse *models.Horse) error {
	stub.horses[horse.ID] = *horse
	return nil
}

func (stub *stubHorseRepo) Delete(horse *models.Horse) error {
	delete(stub.horses, horse.ID)
	return nil
}

type stubPregnancyRepo struct {
	pregnancies map[uint]models.Pregnancy
	nextID      uint
	listErr     error
}

func newStubPregnancyRepo(pregnancies ...models.Pregnancy) *stubPregnancyRepo {
	repo := &stubPregnancyRepo{pregnancies: make(map[uint]models.Pregnancy), nextID: 1}
	for _, pregnancy := range pregnancies {
		repo.pregnancies[pregnancy.ID] = pregnancy
		if pregnancy.ID >= repo.nextID {
			repo.nextID = pregnancy.ID + 1
		}
	}
	return repo
}

func (stub *stubPregnancyRepo) ListByUser(userID uint, filter models.PregnancyFilter) ([]models.Pregnancy, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	result := make([]models.Pregnancy, 0, len(stub.pregnancies))
	for _, pregnancy := range stub.pregnancies {
		if pregnancy.UserID != userID {
			continue
		}
		if filter.MareID != 0 && pregnancy.MareID != filter.MareID {
			continue
		}
		if filter.Outcome != "" && pregnancy.Outcome != filter.Outcome {
			continue
		}
		if filter.From != nil && pregnancy.ConceptionDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !pregnancy.ConceptionDate.Before(*filter.To) {
			continue
		}
		result = append(result, pregnancy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ConceptionDate.After(result[j].ConceptionDate)
	})
	return result, nil
}

func (stub *stubPregnancyRepo) FindByIDForUser(pregnancyID uint, userID uint) (models.Pregnancy, bool, error) {
	pregnancy, ok := stub.pregnancies[pregnancyID]
	if !ok || pregnancy.UserID != userID {
		return models.Pregnancy{}, false, nil
	}
	return pregnancy, true, nil
}

func (stub *stubPregnancyRepo) CountOngoingForHorse(horseID uint, excludeID uint) (int64, error) {
	var count int64
	for _, pregnancy := range stub.pregnancies {
		if pregnancy.ID == excludeID || !pregnancy.IsOngoing() {
			continue
		}
		if pregnancy.MareID == horseID || (pregnancy.StallionID != nil && *pregnancy.StallionID == horseID) {
			count++
		}
	}
	return count, nil
}

func (stub *stubPregnancyRepo) CountOngoingForMare(mareID uint, excludeID uint) (int64, error) {
	var count int64
	for _, pregnancy := range stub.pregnancies {
		if pregnancy.ID != excludeID && pregnancy.IsOngoing() && pregnancy.MareID == mareID {
			count++
		}
	}
	return count, nil
}

func (stub *stubPregnancyRepo) Create(pregnancy *models.Pregnancy) error {
	pregnancy.ID = stub.nextID
	stub.nextID++
	stub.pregnancies[pregnancy.ID] = *pregnancy
	return nil
}

func (stub *stubPregnancyRepo) Save(pregnancy *models.Pregnancy) error {
	stub.pregnancies[pregnancy.ID] = *pregnancy
	return nil
}

func (stub *stubPregnancyRepo) Delete(pregnancy *models.Pregnancy) error {
	delete(stub.pregnancies, pregnancy.ID)
	return nil
}

type stubUserRepo struct {
	users         []models.User
	updatedUserID uint
	updatedHash   string
	updatedForce  bool
}

func (stub *stubUserRepo) CountUsers() (int64, error) {
	return int64(len(stub.users)), nil
}

func (stub *stubUserRepo) ExistsByNormalizedEmail(email string) (bool, error) {
	for _, user := range stub.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubUserRepo) FindByNormalizedEmail(email string) (models.User, error) {
	for _, user := range stub.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (stub *stubUserRepo) FindByID(userID uint) (models.User, error) {
	for _, user := range stub.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (stub *stubUserRepo) ListOwners() ([]models.User, error) {
	owners := make([]models.User, 0, len(stub.users))
	for _, user := range stub.users {
		if user.Role == models.RoleOwner {
			owners = append(owners, user)
		}
	}
	return owners, nil
}

func (stub *stubUserRepo) Create(user *models.User) error {
	user.ID = uint(len(stub.users) + 1)
	stub.users = append(stub.users, *user)
	return nil
}

func (stub *stubUserRepo) CreateFirstUser(user *models.User) (bool, error) {
	if len(stub.users) > 0 {
		return false, nil
	}
	return true, stub.Create(user)
}

func (stub *stubUserRepo) ListViewers(ownerID uint) ([]models.User, error) {
	viewers := make([]models.User, 0)
	for _, user := range stub.users {
		if user.Role == models.RoleViewer && user.HerdOwnerID != nil && *user.HerdOwnerID == ownerID {
			viewers = append(viewers, user)
		}
	}
	return viewers, nil
}

func (stub *stubUserRepo) DeleteViewer(ownerID uint, viewerID uint) (bool, error) {
	for index, user := range stub.users {
		if user.ID != viewerID || user.Role != models.RoleViewer || user.HerdOwnerID == nil || *user.HerdOwnerID != ownerID {
			continue
		}
		stub.users = append(stub.users[:index], stub.users[index+1:]...)
		return true, nil
	}
	return false, nil
}

func (stub *stubUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	stub.updatedUserID = userID
	stub.updatedHash = passwordHash
	stub.updatedForce = mustChangePassword
	for index := range stub.users {
		if stub.users[index].ID == userID {
			stub.users[index].PasswordHash = passwordHash
			stub.users[index].MustChangePassword = mustChangePassword
		}
	}
	return nil
}

func fixedClock(value time.Time) func() time.Time {
	return func() time.Time {
		return value
	}
}
