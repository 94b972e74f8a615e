package common

const RedisKeyPopularMedals = "medals:popular"
