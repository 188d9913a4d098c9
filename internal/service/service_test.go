package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gin-account-service/internal/apperr"
	"gin-account-service/internal/core/auth"
	"gin-account-service/internal/core/cache"
	"gin-account-service/internal/core/database"
	"gin-account-service/internal/domain"
	"gin-account-service/internal/repo"
)

// memBlobs 内存版 BlobStore，记录删除调用
type memBlobs struct {
	mu        sync.Mutex
	seq       int
	objects   map[string]time.Time
	deleted   []string
	deleteErr error
	onDelete  func(id string) // 删除成功后在锁外调用
}

func newMemBlobs() *memBlobs { return &memBlobs{objects: map[string]time.Time{}} }

func (m *memBlobs) put(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id] = at
}

func (m *memBlobs) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[id]
	return ok
}

// ValidID 测试里的 id 不是 xid 形状，只挡超长和非字母数字
func (m *memBlobs) ValidID(id string) bool {
	if id == "" || len(id) > 32 {
		return false
	}
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (m *memBlobs) GenerateUploadURL(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("http://blobs.test/upload?token=t%d", m.seq), nil
}

func (m *memBlobs) URL(_ context.Context, id string) (string, error) {
	if !m.has(id) {
		return "", nil
	}
	return "http://blobs.test/" + id, nil
}

func (m *memBlobs) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	if m.deleteErr != nil {
		m.mu.Unlock()
		return m.deleteErr
	}
	delete(m.objects, id)
	m.deleted = append(m.deleted, id)
	hook := m.onDelete
	m.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return nil
}

func (m *memBlobs) deletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// gatedProfiles 引用预检之后卡住，直到 n 个调用都过了预检
type gatedProfiles struct {
	domain.ProfileRepository
	gate sync.WaitGroup
}

func newGatedProfiles(inner domain.ProfileRepository, n int) *gatedProfiles {
	g := &gatedProfiles{ProfileRepository: inner}
	g.gate.Add(n)
	return g
}

func (g *gatedProfiles) IsAvatarReferenced(ctx context.Context, id string) (bool, error) {
	used, err := g.ProfileRepository.IsAvatarReferenced(ctx, id)
	g.gate.Done()
	g.gate.Wait()
	return used, err
}

// cmdRecorder 记录发往 redis 的命令且不真正发送
type cmdRecorder struct {
	mu     sync.Mutex
	onCmd  func(args []any)
	called [][]any
}

func (r *cmdRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (r *cmdRecorder) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		r.mu.Lock()
		r.called = append(r.called, cmd.Args())
		hook := r.onCmd
		r.mu.Unlock()
		if hook != nil {
			hook(cmd.Args())
		}
		return nil
	}
}

func (r *cmdRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (m *memBlobs) ListBefore(_ context.Context, t time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id, at := range m.objects {
		if at.Before(t) {
			out = append(out, id)
		}
	}
	return out, nil
}

type fixture struct {
	svc      *AccountService
	users    *repo.UserRepo
	profiles *repo.ProfileRepo
	blobs    *memBlobs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "svc.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.UserProfile{}))

	f := &fixture{
		users:    repo.NewUserRepo(db),
		profiles: repo.NewProfileRepo(db),
		blobs:    newMemBlobs(),
	}
	f.svc = NewAccountService(Deps{
		Users:    f.users,
		Profiles: f.profiles,
		Blobs:    f.blobs,
		Identity: auth.ContextIdentity{},
	})
	return f
}

func (f *fixture) user(t *testing.T, email, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: &email, Role: role}
	if name != "" {
		u.Name = &name
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func as(u *domain.User) context.Context { return auth.WithCaller(context.Background(), u.ID) }

func TestGuard(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root@x.io", "", domain.RoleAdmin)
	plain := f.user(t, "joe@x.io", "", domain.RoleUser)

	_, err := f.svc.Guard(context.Background(), domain.CapSelf)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.svc.Guard(auth.WithCaller(context.Background(), "ghost"), domain.CapSelf)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.svc.Guard(as(plain), domain.CapAdmin)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	u, err := f.svc.Guard(as(plain), domain.CapSelf)
	require.NoError(t, err)
	assert.Equal(t, plain.ID, u.ID)

	u, err = f.svc.Guard(as(admin), domain.CapAdmin)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root@x.io", "Root", domain.RoleAdmin)
	f.user(t, "alice@x.io", "", domain.RoleUser)
	f.user(t, "bob@x.io", "ALICE Cooper", domain.RoleUser)
	f.user(t, "carol@x.io", "Carol", domain.RoleUser)

	all, err := f.svc.ListUsers(as(admin), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "carol@x.io", *all[0].Email)
	assert.Equal(t, "root@x.io", *all[3].Email)

	hits, err := f.svc.ListUsers(as(admin), "  Alice ")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "bob@x.io", *hits[0].Email)
	assert.Equal(t, "alice@x.io", *hits[1].Email)

	none, err := f.svc.ListUsers(as(admin), "zed")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	plain := f.user(t, "joe@x.io", "", domain.RoleUser)

	_, err := f.svc.ListUsers(as(plain), "")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = f.svc.ListUsers(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestSetUserRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "root@x.io", "", domain.RoleAdmin)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)

	require.NoError(t, f.svc.SetUserRole(as(admin), joe.ID, "admin"))
	got, err := f.users.FindByID(ctx, joe.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	list, err := f.svc.ListUsers(as(admin), "joe")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.RoleAdmin, list[0].Role)

	// joe 现在是管理员，可以降级 root
	require.NoError(t, f.svc.SetUserRole(as(joe), admin.ID, "user"))
	err = f.svc.SetUserRole(as(admin), joe.ID, "user")
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestSetUserRoleSelfDemotion(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root@x.io", "", domain.RoleAdmin)

	err := f.svc.SetUserRole(as(admin), admin.ID, "user")
	assert.ErrorIs(t, err, apperr.ErrInvalidOperation)

	got, err := f.users.FindByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	// 给自己设 admin 是允许的空操作
	assert.NoError(t, f.svc.SetUserRole(as(admin), admin.ID, "admin"))
}

func TestSetUserRoleErrors(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "root@x.io", "", domain.RoleAdmin)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)

	assert.ErrorIs(t, f.svc.SetUserRole(as(admin), "missing", "admin"), apperr.ErrNotFound)
	assert.ErrorIs(t, f.svc.SetUserRole(as(admin), joe.ID, "owner"), apperr.ErrInvalidInput)
	// 守卫先于参数校验
	assert.ErrorIs(t, f.svc.SetUserRole(as(joe), admin.ID, "owner"), apperr.ErrPermissionDenied)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "Joe", domain.RoleUser)

	u, err := f.svc.UpdateProfile(as(joe), strPtr("  Alice  "))
	require.NoError(t, err)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Alice", *u.Name)

	v, err := f.svc.Viewer(as(joe))
	require.NoError(t, err)
	require.NotNil(t, v)
	require.NotNil(t, v.Name)
	assert.Equal(t, "Alice", *v.Name)

	u, err = f.svc.UpdateProfile(as(joe), nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", *u.Name)

	u, err = f.svc.UpdateProfile(as(joe), strPtr("   "))
	require.NoError(t, err)
	assert.Nil(t, u.Name)

	_, err = f.svc.UpdateProfile(context.Background(), strPtr("x"))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestGenerateAvatarUploadTarget(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)

	a, err := f.svc.GenerateAvatarUploadTarget(as(joe))
	require.NoError(t, err)
	b, err := f.svc.GenerateAvatarUploadTarget(as(joe))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = f.svc.GenerateAvatarUploadTarget(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestSetAvatarTwiceReplacesAndDeletesOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)
	f.blobs.put("blob1", time.Now())
	f.blobs.put("blob2", time.Now())

	require.NoError(t, f.svc.SetAvatar(as(joe), "blob1"))
	require.NoError(t, f.svc.SetAvatar(as(joe), "blob2"))

	p, err := f.profiles.FindByUserID(ctx, joe.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "blob2", *p.AvatarStorageID)
	assert.Equal(t, []string{"blob1"}, f.blobs.deleted)
	assert.False(t, f.blobs.has("blob1"))
	assert.True(t, f.blobs.has("blob2"))

	// 同一个 id 再设一次不删任何东西
	require.NoError(t, f.svc.SetAvatar(as(joe), "blob2"))
	assert.Equal(t, []string{"blob1"}, f.blobs.deleted)

	v, err := f.svc.Viewer(as(joe))
	require.NoError(t, err)
	require.NotNil(t, v.AvatarURL)
	assert.Equal(t, "http://blobs.test/blob2", *v.AvatarURL)
}

func TestSetAvatarRejects(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)
	ann := f.user(t, "ann@x.io", "", domain.RoleUser)
	f.blobs.put("shared", time.Now())

	assert.ErrorIs(t, f.svc.SetAvatar(as(joe), " "), apperr.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.SetAvatar(context.Background(), "shared"), apperr.ErrUnauthenticated)

	require.NoError(t, f.svc.SetAvatar(as(joe), "shared"))
	assert.ErrorIs(t, f.svc.SetAvatar(as(ann), "shared"), apperr.ErrConflictState)
}

func TestSetAvatarDeleteFailureKeepsNewReference(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)
	require.NoError(t, f.svc.SetAvatar(as(joe), "blob1"))

	f.blobs.deleteErr = errors.New("store down")
	err := f.svc.SetAvatar(as(joe), "blob2")
	require.Error(t, err)

	p, err := f.profiles.FindByUserID(context.Background(), joe.ID)
	require.NoError(t, err)
	assert.Equal(t, "blob2", *p.AvatarStorageID)
}

func TestSetAvatarConcurrentCreateLeavesOneProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)

	ids := []string{"blob0", "blob1", "blob2", "blob3"}
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = f.svc.SetAvatar(as(joe), id)
		}(i, id)
	}
	wg.Wait()
	for i, err := range errs {
		assert.NoError(t, err, "SetAvatar(%s)", ids[i])
	}

	p, err := f.profiles.FindByUserID(ctx, joe.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.AvatarStorageID)
	final := *p.AvatarStorageID
	assert.Contains(t, ids, final)

	referenced := 0
	for _, id := range ids {
		used, err := f.profiles.IsAvatarReferenced(ctx, id)
		require.NoError(t, err)
		if used {
			referenced++
		}
	}
	assert.Equal(t, 1, referenced)

	// 被删的只能是被顶掉的，当前头像一定还在
	for _, id := range f.blobs.deletedIDs() {
		assert.Contains(t, ids, id)
		assert.NotEqual(t, final, id)
	}
}

func TestSetAvatarSameIDForTwoUsersOnlyOneWins(t *testing.T) {
	for _, withProfiles := range []bool{false, true} {
		name := "create"
		if withProfiles {
			name = "patch"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			joe := f.user(t, "joe@x.io", "", domain.RoleUser)
			ann := f.user(t, "ann@x.io", "", domain.RoleUser)
			if withProfiles {
				require.NoError(t, f.profiles.Create(ctx, &domain.UserProfile{UserID: joe.ID}))
				require.NoError(t, f.profiles.Create(ctx, &domain.UserProfile{UserID: ann.ID}))
			}
			f.blobs.put("shared", time.Now())

			// 两边都先过了"未被引用"的预检再写
			svc := NewAccountService(Deps{
				Users:    f.users,
				Profiles: newGatedProfiles(f.profiles, 2),
				Blobs:    f.blobs,
				Identity: auth.ContextIdentity{},
			})

			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i, u := range []*domain.User{joe, ann} {
				wg.Add(1)
				go func(i int, u *domain.User) {
					defer wg.Done()
					errs[i] = svc.SetAvatar(as(u), "shared")
				}(i, u)
			}
			wg.Wait()

			ok, conflict := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, apperr.ErrConflictState):
					conflict++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, ok)
			assert.Equal(t, 1, conflict)

			owners := 0
			for _, u := range []*domain.User{joe, ann} {
				p, err := f.profiles.FindByUserID(ctx, u.ID)
				require.NoError(t, err)
				if p != nil && p.AvatarStorageID != nil && *p.AvatarStorageID == "shared" {
					owners++
				}
			}
			assert.Equal(t, 1, owners)
			assert.Empty(t, f.blobs.deletedIDs())
			assert.True(t, f.blobs.has("shared"))
		})
	}
}

func TestSetAvatarRejectsMalformedID(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)

	for _, id := range []string{strings.Repeat("a", 40), "../etc/passwd", "blob 1"} {
		assert.ErrorIs(t, f.svc.SetAvatar(as(joe), id), apperr.ErrInvalidInput, id)
	}
	p, err := f.profiles.FindByUserID(context.Background(), joe.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestWritesInvalidateViewerBeforeAndAfter(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "Joe", domain.RoleUser)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	rec := &cmdRecorder{}
	rdb.AddHook(rec)
	f.svc = NewAccountService(Deps{
		Users:    f.users,
		Profiles: f.profiles,
		Blobs:    f.blobs,
		Identity: auth.ContextIdentity{},
		Cache:    cache.NewWithClient(rdb),
	})

	// 每次 del 时库里的名字，用来区分写前写后
	var seen []string
	rec.onCmd = func(args []any) {
		if args[0] != "del" {
			return
		}
		u, err := f.users.FindByID(context.Background(), joe.ID)
		require.NoError(t, err)
		seen = append(seen, *u.Name)
	}

	_, err := f.svc.UpdateProfile(as(joe), strPtr("Joseph"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Joe", "Joseph"}, seen)
	require.Len(t, rec.called, 2)
	for _, args := range rec.called {
		assert.Equal(t, []any{"del", "viewer:" + joe.ID}, args)
	}

	rec.called = nil
	require.NoError(t, f.svc.SetAvatar(as(joe), "blob1"))
	require.NoError(t, f.svc.RemoveAvatar(as(joe)))
	assert.Len(t, rec.called, 4)
}

func TestRemoveAvatar(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)

	// 没有 profile
	require.NoError(t, f.svc.RemoveAvatar(as(joe)))
	assert.Empty(t, f.blobs.deleted)

	f.blobs.put("blob1", time.Now())
	require.NoError(t, f.svc.SetAvatar(as(joe), "blob1"))
	require.NoError(t, f.svc.RemoveAvatar(as(joe)))
	assert.Equal(t, []string{"blob1"}, f.blobs.deleted)

	p, err := f.profiles.FindByUserID(context.Background(), joe.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.AvatarStorageID)

	// profile 在但没有头像
	require.NoError(t, f.svc.RemoveAvatar(as(joe)))
	assert.Equal(t, []string{"blob1"}, f.blobs.deleted)

	assert.ErrorIs(t, f.svc.RemoveAvatar(context.Background()), apperr.ErrUnauthenticated)
}

func TestViewer(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "Joe", domain.RoleUser)

	v, err := f.svc.Viewer(context.Background())
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = f.svc.Viewer(auth.WithCaller(context.Background(), "ghost"))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = f.svc.Viewer(as(joe))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, joe.ID, v.ID)
	assert.Equal(t, domain.RoleUser, v.Role)
	assert.Nil(t, v.AvatarURL)

	// 引用的 blob 不在存储里，按无头像处理
	require.NoError(t, f.svc.SetAvatar(as(joe), "gone"))
	v, err = f.svc.Viewer(as(joe))
	require.NoError(t, err)
	assert.Nil(t, v.AvatarURL)
}

func TestProvisionAndBootstrapAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Provision(ctx, "  Alice@Example.COM ", " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", *u.Email)
	assert.Equal(t, "Alice", *u.Name)
	assert.Equal(t, domain.RoleUser, u.Role)

	again, err := f.svc.Provision(ctx, "alice@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	_, err = f.svc.Provision(ctx, " ", "x")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	admin, err := f.svc.BootstrapAdmin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = f.svc.ListUsers(as(admin), "")
	assert.NoError(t, err)

	_, err = f.svc.BootstrapAdmin(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCollectOrphanBlobs(t *testing.T) {
	f := newFixture(t)
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)
	old := time.Now().Add(-2 * time.Hour)
	f.blobs.put("attached", old)
	f.blobs.put("orphan", old)
	f.blobs.put("fresh", time.Now())
	require.NoError(t, f.svc.SetAvatar(as(joe), "attached"))

	rep, err := f.svc.CollectOrphanBlobs(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Scanned)
	assert.Equal(t, 1, rep.Deleted)
	assert.Equal(t, []string{"orphan"}, f.blobs.deleted)
	assert.True(t, f.blobs.has("attached"))
	assert.True(t, f.blobs.has("fresh"))
}

func TestCollectOrphanBlobsDetachesBlobAttachedMidway(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	joe := f.user(t, "joe@x.io", "", domain.RoleUser)
	f.blobs.put("late", time.Now().Add(-2*time.Hour))

	// 引用检查之后、删除生效之前，用户把它设成了头像
	f.blobs.onDelete = func(id string) {
		require.NoError(t, f.profiles.Create(ctx, &domain.UserProfile{UserID: joe.ID, AvatarStorageID: strPtr(id)}))
	}

	rep, err := f.svc.CollectOrphanBlobs(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, GCReport{Scanned: 1, Raced: 1}, rep)

	p, err := f.profiles.FindByUserID(ctx, joe.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.AvatarStorageID)

	v, err := f.svc.Viewer(as(joe))
	require.NoError(t, err)
	assert.Nil(t, v.AvatarURL)
}

func strPtr(s string) *string { return &s }
