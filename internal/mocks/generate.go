package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/participant --output domain/participant --outpkg participantmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Feed --dir ../domain/playerstats --output domain/playerstats --outpkg playerstatsmock --filename feed_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScoreRepository --dir ../domain/scoring --output domain/scoring --outpkg scoringmock --filename score_repository_mock.go
