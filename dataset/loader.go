// Package dataset 从 CSV 文件加载景点、评分与用户数据。
//
// 列按表头名称查找，多余的列被忽略；缺少必需列返回错误，无法解析的行被跳过并计数。
package dataset

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/placerec/core"
)

// 列名
const (
	ColPlaceID     = "Place_Id"
	ColPlaceName   = "Place_Name"
	ColCategory    = "Category"
	ColCity        = "City"
	ColPrice       = "Price"
	ColLat         = "Lat"
	ColLong        = "Long"
	ColUserID      = "User_Id"
	ColPlaceRating = "Place_Ratings"
	ColLocation    = "Location"
	ColAge         = "Age"
)

// Stats 记录一次加载的行数统计。
type Stats struct {
	Rows    int
	Skipped int
}

// Dataset 是启动时加载的全部原始数据。
type Dataset struct {
	Places  []core.Place
	Ratings []core.Rating
	Users   []core.User

	PlaceStats  Stats
	RatingStats Stats
	UserStats   Stats
}

// Paths 指定三个数据文件，UsersPath 为空表示没有用户文件。
type Paths struct {
	PlacesPath  string
	RatingsPath string
	UsersPath   string
}

// ReadPlaces 读取景点表。重复的 Place_Id 只保留第一次出现的行。
func ReadPlaces(r io.Reader) ([]core.Place, Stats, error) {
	var places []core.Place
	seen := make(map[int64]struct{})
	st, err := each(r, []string{ColPlaceID, ColPlaceName, ColCategory, ColPrice}, func(h header, row []string) bool {
		id, err := h.int64(row, ColPlaceID)
		if err != nil {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		price, err := h.float(row, ColPrice)
		if err != nil {
			return false
		}
		lat, _ := h.float(row, ColLat)
		lng, _ := h.float(row, ColLong)
		seen[id] = struct{}{}
		places = append(places, core.Place{
			ID:       id,
			Name:     h.get(row, ColPlaceName),
			Category: h.get(row, ColCategory),
			City:     h.get(row, ColCity),
			Price:    price,
			Lat:      lat,
			Long:     lng,
			Cluster:  -1,
		})
		return true
	})
	if err != nil {
		return nil, st, fmt.Errorf("places: %w", err)
	}
	return places, st, nil
}

// ReadRatings 读取评分表。
func ReadRatings(r io.Reader) ([]core.Rating, Stats, error) {
	var ratings []core.Rating
	st, err := each(r, []string{ColUserID, ColPlaceID, ColPlaceRating}, func(h header, row []string) bool {
		uid, err := h.int64(row, ColUserID)
		if err != nil {
			return false
		}
		pid, err := h.int64(row, ColPlaceID)
		if err != nil {
			return false
		}
		if h.get(row, ColPlaceRating) == "" {
			return false
		}
		v, err := h.float(row, ColPlaceRating)
		if err != nil {
			return false
		}
		ratings = append(ratings, core.Rating{UserID: uid, PlaceID: pid, Value: v})
		return true
	})
	if err != nil {
		return nil, st, fmt.Errorf("ratings: %w", err)
	}
	return ratings, st, nil
}

// ReadUsers 读取用户表。只有 Age 是必需列。
func ReadUsers(r io.Reader) ([]core.User, Stats, error) {
	var users []core.User
	st, err := each(r, []string{ColAge}, func(h header, row []string) bool {
		age, err := h.int64(row, ColAge)
		if err != nil {
			return false
		}
		id, _ := h.int64(row, ColUserID)
		users = append(users, core.User{ID: id, Location: h.get(row, ColLocation), Age: int(age)})
		return true
	})
	if err != nil {
		return nil, st, fmt.Errorf("users: %w", err)
	}
	return users, st, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, Stats, error)) ([]T, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

// LoadAll 并发加载三个文件，任一文件失败则整体失败。
func LoadAll(ctx context.Context, p Paths) (*Dataset, error) {
	ds := &Dataset{}
	eg, _ := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		ds.Places, ds.PlaceStats, err = readFile(p.PlacesPath, ReadPlaces)
		return err
	})
	eg.Go(func() error {
		var err error
		ds.Ratings, ds.RatingStats, err = readFile(p.RatingsPath, ReadRatings)
		return err
	})
	if p.UsersPath != "" {
		eg.Go(func() error {
			var err error
			ds.Users, ds.UserStats, err = readFile(p.UsersPath, ReadUsers)
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}
