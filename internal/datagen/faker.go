//-------------------------------------------------------------------------
//
// CityRetail Warehouse ETL
//
// Copyright (c) 2025 - 2026, CityRetail Analytics
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates demo raw extracts for the seed command.
package datagen

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for
// reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// ProductCategory generates a random product category.
func (f *Faker) ProductCategory() string {
	return f.faker.ProductCategory()
}

// Company generates a random company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// Price generates a random price between min and max.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// IntRange generates a random integer in [min, max].
func (f *Faker) IntRange(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Bool generates a random boolean with the given probability of true.
func (f *Faker) Bool(probability float32) bool {
	return f.faker.Float32() < probability
}

// Element picks a random element of a slice.
func Element[T any](f *Faker, values []T) T {
	return values[f.faker.IntRange(0, len(values)-1)]
}
