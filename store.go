package main

import (
	"context"
	"sync"

	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/sim/catalogue/snapshot"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store 按Path读写快照，mongo连接在首次使用时建立
type Store struct {
	mongoURI string

	mu     sync.Mutex
	client *mongo.Client
}

func NewStore(mongoURI string) *Store {
	return &Store{mongoURI: mongoURI}
}

func (s *Store) lazyClient() *mongo.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		s.client = mongoutil.NewClient(s.mongoURI)
	}
	return s.client
}

// Path 解析快照位置
func (s *Store) Path(filePathOrColl string) (*Path, error) {
	return NewPath(filePathOrColl, s.mongoURI != "")
}

func (s *Store) Load(ctx context.Context, path *Path) (*snapshot.Snapshot, error) {
	if path.IsFile() {
		return snapshot.LoadFile(path.File)
	}
	return snapshot.LoadColl(ctx, mongoutil.GetMongoColl(s.lazyClient(), path))
}

func (s *Store) Save(ctx context.Context, path *Path, snap *snapshot.Snapshot) error {
	if path.IsFile() {
		return snapshot.SaveFile(path.File, snap)
	}
	return snapshot.SaveColl(ctx, mongoutil.GetMongoColl(s.lazyClient(), path), snap)
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Disconnect(context.Background())
		s.client = nil
	}
}
