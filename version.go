package yq

const Version = "3.4.3"
