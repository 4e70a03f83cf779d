package sample

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"sync"
)

// User is the sample resource.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Users is an in-memory ResourceController.
type Users struct {
	mu     sync.Mutex
	users  map[int]User
	nextID int
}

// NewUsers returns a controller holding seed.
func NewUsers(seed ...User) *Users {
	u := &Users{users: map[int]User{}, nextID: 1}
	for _, s := range seed {
		u.users[s.ID] = s
		u.nextID = max(u.nextID, s.ID+1)
	}
	return u
}

// API returns the routed application: the users resource under /api.
func API(users *Users) *Router {
	r := NewRouter()
	r.Prefix("/api", func(api *Router) {
		api.Resource("/users", users)
	})
	return r
}

func (u *Users) Index(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	list := make([]User, 0, len(u.users))
	for _, user := range u.users {
		list = append(list, user)
	}
	u.mu.Unlock()
	slices.SortFunc(list, func(a, b User) int { return a.ID - b.ID })
	success(w, list)
}

func (u *Users) Store(w http.ResponseWriter, r *http.Request) {
	var in User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "Malformed JSON.")
		return
	}
	if errs := validate(in); len(errs) > 0 {
		invalid(w, errs)
		return
	}
	u.mu.Lock()
	in.ID = u.nextID
	u.nextID++
	u.users[in.ID] = in
	u.mu.Unlock()
	w.Header().Set("Location", "/api/users/"+strconv.Itoa(in.ID))
	created(w, in)
}

func (u *Users) Show(w http.ResponseWriter, r *http.Request) {
	user, ok := u.find(r)
	if !ok {
		notFound(w)
		return
	}
	success(w, user)
}

func (u *Users) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := u.find(r)
	if !ok {
		notFound(w)
		return
	}
	var in User
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, "Malformed JSON.")
		return
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if errs := validate(user); len(errs) > 0 {
		invalid(w, errs)
		return
	}
	u.mu.Lock()
	u.users[user.ID] = user
	u.mu.Unlock()
	success(w, user)
}

func (u *Users) Destroy(w http.ResponseWriter, r *http.Request) {
	user, ok := u.find(r)
	if !ok {
		notFound(w)
		return
	}
	u.mu.Lock()
	delete(u.users, user.ID)
	u.mu.Unlock()
	noContent(w)
}

func (u *Users) find(r *http.Request) (User, bool) {
	id, err := strconv.Atoi(Param(r, "id"))
	if err != nil {
		return User{}, false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	return user, ok
}

var userRules = Rules{
	"name":  "required|max:64",
	"email": "required|email",
}

func validate(in User) Errors {
	return Validate(map[string]string{"name": in.Name, "email": in.Email}, userRules)
}
